package service

import (
	"fmt"
	"regexp"
	"strings"

	"gizmo/internal/domain"
)

type TargetKind int

const (
	TargetSteamProfileURL TargetKind = iota + 1
	TargetPlatformID
	TargetReplayProfileURL
	TargetSteamID64
	TargetPlatformName
	TargetBare
)

func (k TargetKind) String() string {
	switch k {
	case TargetSteamProfileURL:
		return "steam-profile-url"
	case TargetPlatformID:
		return "platform-id"
	case TargetReplayProfileURL:
		return "replay-profile-url"
	case TargetSteamID64:
		return "steam-id64"
	case TargetPlatformName:
		return "platform-name"
	case TargetBare:
		return "bare"
	default:
		return "unknown"
	}
}

// Target is a user supplied search term split into a platform hint and an identifier.
type Target struct {
	Raw        string
	Kind       TargetKind
	Platform   domain.Platform
	Identifier string
}

func (t Target) AccountID() string {
	return string(t.Platform) + ":" + t.Identifier
}

var (
	steamProfileURLPattern  = regexp.MustCompile(`^.*((id)|(profiles))/[a-zA-Z0-9_-]{1,50}/*$`)
	platformIDPattern       = regexp.MustCompile(`^[a-zA-Z4]{3,5}[: /][a-zA-Z0-9_-]{1,50}$`)
	replayProfileURLPattern = regexp.MustCompile(`^.*/[a-z4]{3,5}/[a-zA-Z0-9_-]{1,50}/*$`)
	steamID64Pattern        = regexp.MustCompile(`^7656[0-9]{13}$`)
	platformNamePattern     = regexp.MustCompile(`^[a-zA-Z4]{3,5}[: /].{1,50}$`)
	barePattern             = regexp.MustCompile(`^.{1,50}$`)
)

// ParseTarget classifies raw input. The first matching form wins, so an id shaped
// "platform:id" is preferred over the free text "platform:name" reading.
func ParseTarget(raw string) (Target, error) {
	s := strings.TrimSpace(raw)
	t := Target{Raw: s}

	switch {
	case steamProfileURLPattern.MatchString(s):
		parts := pathSegments(s)
		t.Kind = TargetSteamProfileURL
		t.Platform = domain.PlatformSteam
		t.Identifier = parts[len(parts)-1]
	case platformIDPattern.MatchString(s):
		t.Kind = TargetPlatformID
		t.Platform, t.Identifier = splitPlatform(s)
	case replayProfileURLPattern.MatchString(s):
		parts := pathSegments(s)
		t.Kind = TargetReplayProfileURL
		t.Platform = domain.Platform(parts[len(parts)-2])
		t.Identifier = parts[len(parts)-1]
	case steamID64Pattern.MatchString(s):
		t.Kind = TargetSteamID64
		t.Platform = domain.PlatformSteam
		t.Identifier = s
	case platformNamePattern.MatchString(s):
		t.Kind = TargetPlatformName
		t.Platform, t.Identifier = splitPlatform(s)
	case barePattern.MatchString(s):
		t.Kind = TargetBare
		t.Platform = domain.PlatformAny
		t.Identifier = s
	default:
		return Target{}, fmt.Errorf("%q: %w", raw, domain.ErrInvalidTarget)
	}

	t.Platform = domain.Platform(strings.ToLower(strings.TrimSpace(string(t.Platform))))
	t.Identifier = strings.TrimSpace(t.Identifier)
	if t.Identifier == "" {
		return Target{}, fmt.Errorf("%q: %w", raw, domain.ErrInvalidTarget)
	}
	return t, nil
}

func pathSegments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == ' ' })
}

func splitPlatform(s string) (domain.Platform, string) {
	i := strings.IndexAny(s, ": /")
	return domain.Platform(s[:i]), s[i+1:]
}
