// internal/mailer/templates.go
//
// Message bodies.  The welcome email ships HTML plus a plain-text
// alternative; the two notification mails are plain text only, since their
// audience is the site operator.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Georgia, serif; color: #2b2b2b; margin: 0; padding: 24px;">
    <h1 style="color: #14506e;">Welcome aboard, {{.FirstName}}!</h1>
    <p>
      Thanks for registering with Summit Voyage on behalf of
      <strong>{{.Company}}</strong>.  Our team will reach out shortly to plan
      your next journey.
    </p>
    <p>Your confirmation code: <code>{{.Token}}</code></p>
    <p style="color: #777; font-size: 12px;">
      You are receiving this because {{.Email}} was used on our registration
      form.  If that was not you, simply ignore this message.
    </p>
  </body>
</html>`))

type welcomeVars struct {
	FirstName string
	Company   string
	Email     string
	Token     string
}

// renderWelcome produces the HTML and text bodies for a welcome email.
func renderWelcome(d WelcomeData, token string) (html, text string, err error) {
	var buf bytes.Buffer
	if err := welcomeHTML.Execute(&buf, welcomeVars{
		FirstName: d.FirstName,
		Company:   d.Company,
		Email:     d.Email,
		Token:     token,
	}); err != nil {
		return "", "", err
	}

	text = fmt.Sprintf(
		"Welcome aboard, %s!\n\n"+
			"Thanks for registering with Summit Voyage on behalf of %s.  "+
			"Our team will reach out shortly.\n\n"+
			"Your confirmation code: %s\n",
		d.FirstName, d.Company, token)

	return buf.String(), text, nil
}

// renderLeadNotice formats the admin heads-up for a new registration.
func renderLeadNotice(n LeadNotice) string {
	var b strings.Builder
	b.WriteString("A new lead registered on the site.\n\n")
	fmt.Fprintf(&b, "Name:    %s %s\n", n.FirstName, n.LastName)
	fmt.Fprintf(&b, "Email:   %s\n", n.Email)
	fmt.Fprintf(&b, "Company: %s\n", n.Company)
	fmt.Fprintf(&b, "Phone:   %s\n", n.Phone)
	if n.Message != "" {
		fmt.Fprintf(&b, "\nMessage:\n%s\n", n.Message)
	}
	return b.String()
}

// renderContactNotice formats a contact-form submission.
func renderContactNotice(n ContactNotice) string {
	var b strings.Builder
	b.WriteString("New contact form submission.\n\n")
	fmt.Fprintf(&b, "Name:    %s\n", n.Name)
	fmt.Fprintf(&b, "Email:   %s\n", n.Email)
	if n.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", n.Company)
	}
	if n.Phone != "" {
		fmt.Fprintf(&b, "Phone:   %s\n", n.Phone)
	}
	if n.Service != "" {
		fmt.Fprintf(&b, "Service: %s\n", n.Service)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", n.Message)
	return b.String()
}
