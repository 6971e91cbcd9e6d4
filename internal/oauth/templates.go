package oauth

import (
	"html/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// pageData is rendered by resultPageTemplate.
type pageData struct {
	Success   bool
	Title     string
	Message   string
	Detail    string
	Portal    string
	Timestamp time.Time
}

var resultPage = template.Must(template.New("result").Funcs(sprig.FuncMap()).Parse(resultPageTemplate))

const resultPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ .Title | default "Authorization" }} - HubSpot MCP</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            background: linear-gradient(135deg, #1a1a2e 0%, #16213e 50%, #0f3460 100%);
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            color: #e8e8e8;
        }
        .container {
            text-align: center;
            padding: 3rem;
            background: rgba(255, 255, 255, 0.05);
            border-radius: 16px;
            border: 1px solid rgba(255, 255, 255, 0.1);
            max-width: 500px;
            margin: 1rem;
        }
        .icon {
            width: 80px;
            height: 80px;
            margin: 0 auto 1.5rem;
            border-radius: 50%;
            display: flex;
            align-items: center;
            justify-content: center;
            font-size: 2.5rem;
        }
        .ok { background: linear-gradient(135deg, #ff7a59 0%, #ff5c35 100%); }
        .fail { background: linear-gradient(135deg, #ff6b6b 0%, #ee5a5a 100%); }
        h1 { font-size: 1.75rem; font-weight: 600; margin-bottom: 0.5rem; color: #fff; }
        p { color: #a0a0a0; line-height: 1.6; margin-top: 1rem; }
        .detail { color: #ff6b6b; font-weight: 500; }
        .footer {
            margin-top: 2rem;
            padding-top: 1.5rem;
            border-top: 1px solid rgba(255, 255, 255, 0.1);
            font-size: 0.875rem;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="container">
        {{- if .Success }}
        <div class="icon ok">&#10003;</div>
        {{- else }}
        <div class="icon fail">&#10005;</div>
        {{- end }}
        <h1>{{ .Title }}</h1>
        <p>{{ .Message }}</p>
        {{- with .Detail }}
        <p class="detail">{{ . }}</p>
        {{- end }}
        <div class="footer">
            {{ with .Portal }}Portal {{ . | trim }} &middot; {{ end }}{{ .Timestamp | date "2006-01-02 15:04:05 MST" }}
        </div>
    </div>
</body>
</html>`
