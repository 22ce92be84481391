package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier composes and sends the marketplace emails. Every method is best-effort: delivery
// failures are logged and never returned to the caller.
type Notifier struct {
	mailer  Mailer
	siteURL string
	log     *zap.Logger
}

// NewNotifier returns a Notifier. siteURL has no trailing slash and prefixes listing links.
func NewNotifier(mailer Mailer, siteURL string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{mailer: mailer, siteURL: siteURL, log: log}
}

// ListingURL is the public page of a listing.
func (n *Notifier) ListingURL(slug string) string { return n.siteURL + "/l/" + slug }

// Inquiry sends the owner notification (when ownerEmail is known) and the inquirer confirmation.
func (n *Notifier) Inquiry(ctx context.Context, ownerEmail string, data InquiryData) {
	if ownerEmail != "" {
		n.send(ctx, "inquiry_to_lister.html", ownerEmail, "New Inquiry for "+data.ListingTitle, data)
	}
	n.send(ctx, "inquiry_confirmation.html", data.InquirerEmail, "Inquiry Sent: "+data.ListingTitle, data)
}

// ListingApproved tells the owner the listing is published.
func (n *Notifier) ListingApproved(ctx context.Context, ownerEmail string, data ModerationData) {
	n.send(ctx, "listing_approved.html", ownerEmail, "Listing approved: "+data.ListingTitle, data)
}

// ListingRejected tells the owner the listing was rejected, with the moderator's reason if any.
func (n *Notifier) ListingRejected(ctx context.Context, ownerEmail string, data ModerationData) {
	if data.DashboardURL == "" {
		data.DashboardURL = n.siteURL + "/dashboard/listings"
	}
	n.send(ctx, "listing_rejected.html", ownerEmail, "Listing not approved: "+data.ListingTitle, data)
}

func (n *Notifier) send(ctx context.Context, tmpl, to, subject string, data any) {
	if n == nil || n.mailer == nil || to == "" {
		return
	}
	html, err := render(tmpl, data)
	if err != nil {
		n.log.Error("email: render template", zap.String("template", tmpl), zap.Error(err))
		return
	}
	if err := n.mailer.Send(ctx, Message{To: to, Subject: subject, HTML: html}); err != nil {
		n.log.Warn("email: send failed", zap.String("template", tmpl), zap.Error(err))
	}
}
