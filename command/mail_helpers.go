package command

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-identity/pkg/types"
)

const (
	defaultConfirmPath = "/accounts/confirm-email"

	subjectConfirmation  = "Please Confirm Your E-mail Address"
	subjectPasswordReset = "Password Reset E-mail"
)

// Links locates the host routes that confirmation and reset mails point at.
// BaseURL carries scheme and host; paths are joined with the key appended as
// the trailing segment.
type Links struct {
	BaseURL     string
	ConfirmPath string
	SiteName    string
}

func (l Links) normalize() Links {
	out := l
	if strings.TrimSpace(out.ConfirmPath) == "" {
		out.ConfirmPath = defaultConfirmPath
	}
	return out
}

// activationURL builds the absolute confirmation URL embedding the key.
func activationURL(links Links, key string) string {
	base := strings.TrimRight(strings.TrimSpace(links.BaseURL), "/")
	path := "/" + strings.Trim(links.ConfirmPath, "/") + "/" + url.PathEscape(key)
	return base + path
}

func confirmationTemplate(signup, change bool) string {
	switch {
	case signup:
		return types.MailTemplateConfirmationSignup
	case change:
		return types.MailTemplateConfirmationChange
	default:
		return types.MailTemplateConfirmation
	}
}

func confirmationMailContext(links Links, account *types.Account, identity *types.EmailIdentity, key, activateURL string) map[string]any {
	ctx := map[string]any{
		"email":        identity.Address,
		"key":          key,
		"activate_url": activateURL,
	}
	if account != nil {
		ctx["user"] = account.Email
	}
	if strings.TrimSpace(links.SiteName) != "" {
		ctx["site_name"] = links.SiteName
	}
	return ctx
}

func resetMailContext(links Links, account *types.Account, resetURL string) map[string]any {
	ctx := map[string]any{
		"user":      account.Email,
		"reset_url": resetURL,
	}
	if strings.TrimSpace(links.SiteName) != "" {
		ctx["site_name"] = links.SiteName
	}
	return ctx
}
