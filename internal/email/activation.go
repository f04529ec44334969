package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Plantilla del mail de activación de cuenta (flujo de signup).
var activationHTML = template.Must(template.New("activation").Parse(`<!doctype html>
<html>
  <body style="font-family: sans-serif;">
    <h2>Activá tu cuenta</h2>
    <p>Gracias por registrarte. Hacé click en el link para activar tu cuenta:</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>Si no creaste esta cuenta, ignorá este mail.</p>
  </body>
</html>`))

// BuildActivation arma subject + cuerpos (html y texto) del mail de activación.
// baseURL es la URL pública del servicio; el link apunta al endpoint de verify.
func BuildActivation(baseURL, token string) (subject, htmlBody, textBody string, err error) {
	link := fmt.Sprintf("%s/v1/auth/verify/%s", baseURL, token)

	var buf bytes.Buffer
	if err := activationHTML.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", "", "", err
	}
	text := "Gracias por registrarte. Activá tu cuenta entrando a: " + link
	return "Activá tu cuenta", buf.String(), text, nil
}
