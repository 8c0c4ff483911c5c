package cdp

import (
	"github.com/chromedp/cdproto"
	"github.com/mailru/easyjson"
)

// Event is a CDP event notification as received from the browser.
type Event struct {
	Name      cdproto.MethodType
	SessionID string
	Params    easyjson.RawMessage
}
