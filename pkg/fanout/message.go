package fanout

import (
	"fmt"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/conditions"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/types"
)

// ComposeSMS builds the anonymous exposure notice. The only inputs are the
// condition label and the pre-vagued elapsed phrase; the encounter date and
// the reporter never reach this function's output.
func ComposeSMS(cond conditions.Condition, contact types.ContactToNotify) string {
	return fmt.Sprintf(
		"Anonymous health notice: a partner you met %s has tested positive for %s. "+
			"Please consider getting tested. This notice is anonymous and does not identify who sent it.",
		contact.VagueElapsed, cond.Label,
	)
}
