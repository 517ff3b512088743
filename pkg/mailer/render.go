package mailer

import (
	"fmt"
	"html/template"
	"strings"
)

var verifyHTML = template.Must(template.New("verify").Parse(`<p>Hola {{.name}},</p>
<p>Confirma tu correo haciendo clic en el siguiente enlace:</p>
<p><a href="{{.link}}">Confirmar correo</a></p>
<p>Si no creaste esta cuenta, ignora este mensaje.</p>`))

var welcomeHTML = template.Must(template.New("welcome").Parse(`<p>Hola {{.name}},</p>
<p>Tu cuenta está lista. Ya puedes crear tus notas.</p>`))

var contactHTML = template.Must(template.New("contact").Parse(`<p>Nuevo mensaje de contacto.</p>
<ul>
<li>Nombre: {{.name}}</li>
<li>Correo: {{.email}}</li>
<li>Asunto: {{.subject}}</li>
<li>IP: {{.ip}}</li>
</ul>
<p>{{.body}}</p>`))

// Render produces the subject and bodies for a job. Unknown kinds are an
// error so the worker can dead-letter them instead of sending junk.
func Render(job EmailJob) (subject, text, html string, err error) {
	switch job.Kind {
	case KindVerify:
		subject = firstNonEmpty(job.Subject, "Confirma tu correo")
		text = fmt.Sprintf("Hola %s, confirma tu correo: %s", job.Data["name"], job.Data["link"])
		html, err = exec(verifyHTML, job.Data)
	case KindWelcome:
		subject = firstNonEmpty(job.Subject, "Bienvenido")
		text = fmt.Sprintf("Hola %s, tu cuenta está lista.", job.Data["name"])
		html, err = exec(welcomeHTML, job.Data)
	case KindContact:
		subject = firstNonEmpty(job.Subject, "Nuevo mensaje de contacto")
		text = fmt.Sprintf("De %s <%s>: %s", job.Data["name"], job.Data["email"], job.Data["body"])
		html, err = exec(contactHTML, job.Data)
	default:
		err = fmt.Errorf("unknown email kind %q", job.Kind)
	}
	return subject, text, html, err
}

func exec(t *template.Template, data map[string]string) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
