package fanout

import (
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gosms"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/types"
)

// Classify partitions a resolved contact into exactly one channel. Platform
// identity wins over a phone number, so an app user with a phone on file is
// reached in-app, never by SMS.
func Classify(c types.ContactToNotify) types.Channel {
	if c.UserRef != "" {
		return types.ChannelAppUser
	}
	if _, err := gosms.NormalizeSMS(c.PhoneNumber); err == nil {
		return types.ChannelSMS
	}
	return types.ChannelManual
}
