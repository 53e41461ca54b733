package mail

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"

	"github.com/seguel/whizzat-backend-sub000/pkg/model"
)

// Digest templates exist for Brazilian Portuguese (product default) and
// English. Any other user language falls back to its closest match.
var supportedLocales = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// DigestInput is everything needed to compose one digest email.
type DigestInput struct {
	Name        string
	Language    string
	ProfileKind model.ProfileKind
	Count       int
	Oldest      time.Time
	Dashboard   string // base URL; the role path is appended
}

// ComposeDigest renders the localized subject and HTML body for one
// recipient group.
func ComposeDigest(in DigestInput) (subject, body string) {
	tag, _ := language.MatchStrings(localeMatcher, in.Language)
	link := in.Dashboard + dashboardPath(in.ProfileKind)

	base, _ := tag.Base()
	if base.String() == "pt" {
		subject = fmt.Sprintf("Você tem %d nova(s) avaliação(ões) aguardando", in.Count)
		body = fmt.Sprintf(
			`<p>Olá %s,</p>
<p>Há <strong>%d</strong> nova(s) avaliação(ões) de habilidade esperando por você, a mais antiga aguardando %s.</p>
<p><a href="%s">Acesse seu painel</a> para responder aos convites.</p>`,
			in.Name, in.Count, relativeAgePT(in.Oldest), link)
		return subject, body
	}

	subject = fmt.Sprintf("You have %d new evaluation(s) waiting", in.Count)
	body = fmt.Sprintf(
		`<p>Hi %s,</p>
<p>There are <strong>%d</strong> new skill evaluation(s) waiting for you, the oldest since %s.</p>
<p><a href="%s">Open your dashboard</a> to respond to the invites.</p>`,
		in.Name, in.Count, humanize.Time(in.Oldest), link)
	return subject, body
}

// dashboardPath returns the role-appropriate dashboard path.
func dashboardPath(kind model.ProfileKind) string {
	switch kind {
	case model.ProfileEvaluator:
		return "/evaluator/invites"
	case model.ProfileCandidate:
		return "/candidate/skills"
	case model.ProfileCompany:
		return "/company/jobs"
	default:
		return "/"
	}
}

// relativeAgePT is a minimal Portuguese rendering of "time ago";
// humanize only localizes English.
func relativeAgePT(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("há %d minuto(s)", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("há %d hora(s)", int(d.Hours()))
	default:
		return fmt.Sprintf("há %d dia(s)", int(d.Hours()/24))
	}
}
