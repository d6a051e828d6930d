package persona

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantKey string
		wantTgt string
		wantOK  bool
	}{
		{"simple", "!hydrate", "hydrate", "", true},
		{"with target", "!hydrate @bob", "hydrate", "@bob", true},
		{"two word command", "!posture check", "posture_check", "", true},
		{"two word with target", "!posture check @bob", "posture_check", "@bob", true},
		{"multi word target", "!bonk the whole kitchen", "bonk", "the whole kitchen", true},
		{"uppercase", "!HYDRATE", "hydrate", "", true},
		{"unknown", "!dance", "", "", false},
		{"no prefix", "hydrate", "", "", false},
		{"bare bang", "!", "", "", false},
		{"whitespace only", "   ", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv, ok := Parse(tc.content)
			if ok != tc.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.content, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if inv.Key != tc.wantKey || inv.Target != tc.wantTgt {
				t.Fatalf("Parse(%q) = %+v, want key=%q target=%q", tc.content, inv, tc.wantKey, tc.wantTgt)
			}
		})
	}
}

// fixLine pins the random pool pick to the given index for one test.
func fixLine(t *testing.T, idx int) {
	t.Helper()
	orig := pickLine
	pickLine = func(pool []string) string { return pool[idx] }
	t.Cleanup(func() { pickLine = orig })
}

func TestRender_HydrateSubstitutesTarget(t *testing.T) {
	fixLine(t, 0)

	out := Render(Invocation{Key: "hydrate", Target: "@bob"}, "Alice", "bob")
	if !strings.Contains(out, "bob") {
		t.Fatalf("expected target substituted, got %q", out)
	}
	if strings.Contains(out, "{target}") {
		t.Fatalf("placeholder left in output %q", out)
	}
	if !strings.HasPrefix(out, "**Alice** redeemed **hydrate** for **bob**!") {
		t.Fatalf("unexpected framing %q", out)
	}
	if !strings.Contains(out, Pool("hydrate")[0][:strings.Index(Pool("hydrate")[0], "{target}")]) {
		t.Fatalf("line not drawn from hydrate pool: %q", out)
	}
}

func TestRender_RedemptionWithoutTarget(t *testing.T) {
	fixLine(t, 1)

	out := Render(Invocation{Key: "stretch"}, "Alice", "")
	if !strings.HasPrefix(out, "**Alice** redeemed **stretch**! ✨") {
		t.Fatalf("unexpected framing %q", out)
	}
	if !strings.Contains(out, "someone") {
		t.Fatalf("expected default target, got %q", out)
	}
}

func TestRender_ActionCommand(t *testing.T) {
	fixLine(t, 0)

	out := Render(Invocation{Key: "bonk", Target: "@bob"}, "Alice", "bob")
	if !strings.HasPrefix(out, "**Alice** bonked **bob**! ✨") {
		t.Fatalf("unexpected framing %q", out)
	}
}

func TestRender_PostureCheckLabelHasSpace(t *testing.T) {
	fixLine(t, 2)

	out := Render(Invocation{Key: "posture_check"}, "Alice", "bob")
	if !strings.Contains(out, "**posture check**") {
		t.Fatalf("expected underscore replaced in label, got %q", out)
	}
}

func TestRender_LurkIsSelfOnly(t *testing.T) {
	fixLine(t, 0)

	out := Render(Invocation{Key: "lurk"}, "Alice", "")
	if !strings.HasPrefix(out, "**Alice** is going into lurk mode! 👀") {
		t.Fatalf("unexpected framing %q", out)
	}
	if !strings.Contains(out, "Alice is going into lurk mode!") {
		t.Fatalf("expected {user} substituted with sender, got %q", out)
	}
}

func TestRender_AlwaysDrawsFromPool(t *testing.T) {
	for i := 0; i < 20; i++ {
		out := Render(Invocation{Key: "pat", Target: "bob"}, "Alice", "bob")
		matched := false
		for _, line := range Pool("pat") {
			probe := strings.ReplaceAll(line, "{target}", "bob")
			if strings.HasSuffix(out, probe) {
				matched = true
				break
			}
		}
		if !matched {
			t.Fatalf("output %q not drawn from pat pool", out)
		}
	}
}
