// Package command – duplicate-submission flavor pool.
package command

import "math/rand/v2"

// duplicateResponses is the fixed pool answered when a user tries to
// participate twice in the same week.
var duplicateResponses = []string{
	"⚠️ ff 20 (｡>﹏<) try again next week",
	"⚠️ you sweaty tryhard (•̀⤙•́) give other people a chance",
	"⚠️ you little cheater what do you think you are doing ( ｡ •`ᴖ´• ｡)",
	"⚠️ did you think we wouldn't catch you farming points??(ꐦ¬_¬) comeback next week noob",
	"⚠️ HEY IT'S DISH OF THE WEEK NOT 2 DISH PER WEEK ლ(ಠ益ಠლ)!!! Try again next week smh",
}

// duplicateResponse picks one flavor line uniformly at random; a seam for
// tests.
var duplicateResponse = func() string {
	return duplicateResponses[rand.IntN(len(duplicateResponses))]
}
