// Package persona implements the text-prefix flavor commands: short
// "!hydrate", "!bonk @user" style actions answered with a random line from a
// fixed per-command pool. The pools and framing mirror the bot's original
// chat personality; there is no persistence and no external call here.
package persona

import (
	"math/rand/v2"
	"strings"
)

// pools maps each command key to its fixed response pool. Lines contain
// {target} (or {user} for self-only commands) placeholders substituted at
// render time.
var pools = map[string][]string{
	"hydrate": {
		"Time to hydrate, {target}! 💧 Stay refreshed! UwU",
		"Don't forget to drink some water, {target}! 💦 (＾▽＾)",
		"Grab that water bottle and take a sip, {target}! 💧 OwO",
	},
	"posture_check": {
		"Straighten that back, {target}! 💺 No more shrimping! UwU",
		"Tatowo reminds you to fix your posture, {target}! 🦐✨",
		"Posture check! Sit up straight, {target}! 💺 (・`ω´・)",
	},
	"stretch": {
		"Stretch it out, {target}! ✨ Time to wiggle those arms! (ﾉ◕ヮ◕)ﾉ*:･ﾟ✧",
		"Don't sit still too long, {target}! Time for a stretch! 💪 UwU",
		"Reach up high and stretch, {target}! 🧘‍♂️ (≧◡≦)",
	},
	"hug": {
		"*gives {target} a warm hug* 🤗 You deserve it! UwU",
		"*wraps arms around {target}* 💖 Sending cozy vibes. (っ＾▿＾)っ",
		"*gentle hug for {target}* 💗 Hope that made your day better. OwO",
	},
	"bonk": {
		"*BONK* 🔨 {target}, behave yourself! (≧ω≦)",
		"*taps {target}'s head* Bonk! No more chaos, okay? UwU",
		"*smacks {target} with a soft hammer* 🔨 OwO",
	},
	"pat": {
		"*pats {target}'s head* ✨ Good job today! UwU (＾▽＾)",
		"*soft pats on {target}'s head* 💖 You're doing great! (・ω・)",
		"*pat pat* There, there {target}. Keep going! OwO",
	},
	"snacc": {
		"*hands {target} a snack* 🍪 Take a break and enjoy! UwU",
		"*slides a cookie to {target}* 🍩 Don't forget to eat something sweet! (＾▽＾)",
		"*offers {target} a snack* 🍙 Fuel up and keep going! OwO",
	},
	"cuddle": {
		"*snuggles with {target}* 🐹💖 Cuddle time! UwU",
		"*wraps up in a blanket with {target}* 🛌 Cozy vibes only! (っ◕‿◕)っ",
		"*gentle cuddles for {target}* 💗 Hope you're feeling better now. OwO",
	},
	"lurk": {
		"{user} is going into lurk mode! 👀 Stay safe and see you soon! UwU",
		"{user} has gone stealth mode. 👻 Enjoy your lurk time! (＾▽＾)",
		"{user} is now lurking. 👀 I'll be here when you're back! OwO",
	},
}

// Command classes decide the framing line prepended to the pool response.
var (
	selfOnlyCommands   = map[string]struct{}{"lurk": {}}
	actionCommands     = map[string]struct{}{"hug": {}, "bonk": {}, "pat": {}, "cuddle": {}, "snacc": {}}
	redemptionCommands = map[string]struct{}{"posture_check": {}, "hydrate": {}, "stretch": {}}
)

// pickLine selects a pool line uniformly at random; a seam for tests.
var pickLine = func(pool []string) string {
	return pool[rand.IntN(len(pool))]
}

// Invocation is one parsed flavor command.
type Invocation struct {
	// Key is the pool key, e.g. "hydrate" or "posture_check".
	Key string
	// Target is the raw target text following the command, without any
	// mention decoding ("@bob", "the whole kitchen", ...). Empty when the
	// command stands alone.
	Target string
}

// Parse recognizes a "!command [target]" invocation. Two-word commands
// ("!posture check") collapse into an underscore key. Unknown commands and
// non-prefixed text return ok=false; the bot stays silent for those.
func Parse(content string) (Invocation, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "!") {
		return Invocation{}, false
	}

	args := strings.Fields(content[1:])
	if len(args) == 0 {
		return Invocation{}, false
	}

	key := strings.ToLower(args[0])
	args = args[1:]

	// "!posture check" → "posture_check"
	if len(args) > 0 {
		if _, known := pools[key]; !known {
			key = key + "_" + strings.ToLower(args[0])
			args = args[1:]
		}
	}

	if _, known := pools[key]; !known {
		return Invocation{}, false
	}
	return Invocation{Key: key, Target: strings.Join(args, " ")}, true
}

// Render produces the full reply for inv. sender is the invoking user's
// display name; target is the resolved target display name, empty when the
// invocation had none (rendered as "someone").
func Render(inv Invocation, sender, target string) string {
	pool := pools[inv.Key]
	line := pickLine(pool)
	label := strings.ReplaceAll(inv.Key, "_", " ")

	if _, ok := selfOnlyCommands[inv.Key]; ok {
		line = strings.ReplaceAll(line, "{user}", sender)
		return "**" + sender + "** is going into lurk mode! 👀\n" + line
	}

	if target == "" {
		target = "someone"
	}
	line = strings.ReplaceAll(line, "{target}", target)

	switch {
	case inSet(actionCommands, inv.Key):
		if target != "someone" {
			return "**" + sender + "** " + label + "ed **" + target + "**! ✨\n" + line
		}
		return "**" + sender + "** " + label + "ed someone! ✨\n" + line
	case inSet(redemptionCommands, inv.Key):
		if target != "someone" {
			return "**" + sender + "** redeemed **" + label + "** for **" + target + "**! ✨\n" + line
		}
		return "**" + sender + "** redeemed **" + label + "**! ✨\n" + line
	default:
		return "**" + sender + "** used **" + label + "**! ✨\n" + line
	}
}

// Pool returns the response pool for key; used by tests and the help text.
func Pool(key string) []string {
	return pools[key]
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
