package view

import (
	"bytes"
	"html/template"
)

// ChallengePageData provides the dynamic fields for the password challenge
// template. It intentionally has no destination field: the target URL must
// not appear anywhere in a challenge response.
type ChallengePageData struct {
	Code      string
	ActionURL string
	Failed    bool
}

var challengePageTmpl = template.Must(template.New("challenge_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>Protected link</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			--accent-strong: #38bdf8;
			--danger: #f87171;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(420px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
		}
		h1 { font-size: 1.4rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		.error {
			margin: 16px 0;
			padding: 12px 16px;
			border-radius: 12px;
			border: 1px solid rgba(248, 113, 113, 0.4);
			background: rgba(248, 113, 113, 0.08);
			color: var(--danger);
			font-size: 0.92rem;
		}
		input[type="password"] {
			width: 100%;
			margin: 16px 0;
			padding: 14px 16px;
			border-radius: 12px;
			border: 1px solid var(--border);
			background: rgba(255, 255, 255, 0.04);
			color: var(--text);
			font-size: 1rem;
		}
		input[type="password"]:focus {
			outline: none;
			border-color: var(--accent);
		}
		button {
			width: 100%;
			height: 48px;
			border: none;
			border-radius: 999px;
			background: linear-gradient(120deg, var(--accent), var(--accent-strong));
			color: #050708;
			font-weight: 600;
			font-size: 1rem;
			cursor: pointer;
			transition: transform 0.15s ease, opacity 0.15s ease;
		}
		button:hover { transform: translateY(-1px); opacity: 0.92; }
	</style>
</head>
<body>
	<div class="card">
		<h1>This link is protected</h1>
		<p>Enter the password to continue to <strong>/{{.Code}}</strong>.</p>

		{{if .Failed}}
		<div class="error">That password didn&rsquo;t match. Try again.</div>
		{{end}}

		<form method="post" action="{{.ActionURL}}">
			<input type="password" name="password" placeholder="Password" autofocus autocomplete="off" />
			<button type="submit">Unlock</button>
		</form>
	</div>
</body>
</html>
`))

// RenderChallengePage renders the password challenge HTML.
func RenderChallengePage(data ChallengePageData) (string, error) {
	var buf bytes.Buffer
	if err := challengePageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
