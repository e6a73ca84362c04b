package policy

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

const facebookScopes = "pages_manage_posts,pages_read_engagement,pages_show_list"

// ConnectionState is the OAuth state value sent with the Facebook dialog
const ConnectionState = "facebook"

// PagesOutput represents the connected pages and the page that should be selected
type PagesOutput struct {
	Pages    []entity.Connection `json:"pages"`
	Selected string              `json:"selected_page_id"`
}

// FacebookPages lists the connected pages of a user and resolves the selection
// against the saved page id. Selected is empty when there are no pages.
func (p *Policy) FacebookPages(ctx context.Context, userID, saved string) (*PagesOutput, error) {
	pages, err := p.svc.FacebookPages(ctx, userID)
	if err != nil {
		p.logger.Error("loading facebook pages failed", "user_id", userID, "error", err)
		return nil, err
	}

	return &PagesOutput{
		Pages:    pages,
		Selected: entity.ResolveSelectedPage(pages, saved),
	}, nil
}

// CompleteConnectionInput represents the OAuth redirect parameters
type CompleteConnectionInput struct {
	UserID string
	Code   string
	State  string
}

// CompleteConnection forwards an OAuth code to the connect webhook
func (p *Policy) CompleteConnection(ctx context.Context, in CompleteConnectionInput) error {
	if in.Code == "" {
		return entity.ErrMissingOAuthCode
	}

	if err := p.hooks.ConnectAccount(ctx, in.Code, in.State, in.UserID); err != nil {
		p.logger.Error("connecting account failed", "user_id", in.UserID, "state", in.State, "error", err)
		return fmt.Errorf("%w: %w", entity.ErrWebhookFailed, err)
	}

	p.logger.Info("account connected", "user_id", in.UserID, "state", in.State)
	return nil
}

// AuthURLInput represents the parameters of the Facebook OAuth dialog
type AuthURLInput struct {
	AppID        string
	GraphVersion string
	RedirectURI  string
}

// FacebookAuthURL builds the Facebook OAuth dialog URL
func FacebookAuthURL(in AuthURLInput) string {
	version := strings.TrimSpace(in.GraphVersion)
	if version == "" {
		version = "v18.0"
	}

	params := url.Values{}
	params.Set("client_id", in.AppID)
	params.Set("redirect_uri", in.RedirectURI)
	params.Set("state", ConnectionState)
	params.Set("scope", facebookScopes)

	return fmt.Sprintf("https://www.facebook.com/%s/dialog/oauth?%s", version, params.Encode())
}
