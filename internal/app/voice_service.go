package app

import (
	"fmt"
	"time"

	"darts/internal/domain"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

const (
	VoiceActionLogin = "login"
	VoiceActionJoin  = "join"

	// DefaultVoiceTokenTTL is how long a signed Vivox token stays valid.
	DefaultVoiceTokenTTL = time.Hour
)

// VoiceChannel is the per-match voice room. Only the two seated players of a
// match are members.
type VoiceChannel struct {
	MatchID string
	Members [2]string
}

// Name is the Vivox channel name for the match.
func (c VoiceChannel) Name() string {
	return "darts-" + c.MatchID
}

// HasMember reports whether playerID may join the channel.
func (c VoiceChannel) HasMember(playerID string) bool {
	return playerID != "" && (c.Members[0] == playerID || c.Members[1] == playerID)
}

// voiceChannelFor derives the channel of a match once both players are seated.
func voiceChannelFor(m *domain.Match) (VoiceChannel, error) {
	p2, ok := m.Player2()
	if !ok {
		return VoiceChannel{}, domain.ErrMissingOpponent
	}
	return VoiceChannel{
		MatchID: m.ID(),
		Members: [2]string{m.Player1().ID(), p2.ID()},
	}, nil
}

// VoiceService signs Vivox access tokens: a login token per player and a join
// token for the voice channel of a match the player sits in.
type VoiceService struct {
	secret string
	issuer string
	domain string
	ttl    time.Duration

	now func() time.Time
}

// NewVoiceService constructs a VoiceService. Empty credentials make every
// token request fail.
func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		secret: secret,
		issuer: issuer,
		domain: domain,
		ttl:    DefaultVoiceTokenTTL,
		now:    time.Now,
	}
}

// WithTTL overrides the token lifetime.
func (s *VoiceService) WithTTL(ttl time.Duration) *VoiceService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// Configured reports whether Vivox credentials are present.
func (s *VoiceService) Configured() bool {
	return s != nil && s.secret != "" && s.issuer != "" && s.domain != ""
}

// LoginToken signs a token that signs playerID into Vivox.
func (s *VoiceService) LoginToken(playerID string) (string, error) {
	if err := s.check(playerID); err != nil {
		return "", err
	}
	return s.sign(playerID, VoiceActionLogin, s.userURI(playerID))
}

// JoinToken signs a token that lets playerID enter channel.
func (s *VoiceService) JoinToken(playerID string, channel VoiceChannel) (string, error) {
	if err := s.check(playerID); err != nil {
		return "", err
	}
	if channel.MatchID == "" {
		return "", fmt.Errorf("voice channel has no match")
	}
	if !channel.HasMember(playerID) {
		return "", fmt.Errorf("player %s is not a member of %s", playerID, channel.Name())
	}
	return s.sign(playerID, VoiceActionJoin, s.channelURI(channel))
}

func (s *VoiceService) check(playerID string) error {
	if !s.Configured() {
		return fmt.Errorf("vivox config is incomplete")
	}
	if playerID == "" {
		return fmt.Errorf("player id is required")
	}
	return nil
}

func (s *VoiceService) sign(playerID, action, target string) (string, error) {
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": playerID,
		"exp": s.now().Add(s.ttl).Unix(),
		"vxa": action,
		"vxi": uuid.NewString(),
		"f":   s.userURI(playerID),
		"t":   target,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *VoiceService) userURI(playerID string) string {
	return "sip:." + s.issuer + "." + playerID + ".@" + s.domain
}

func (s *VoiceService) channelURI(channel VoiceChannel) string {
	return "sip:confctl-g-" + channel.Name() + "@" + s.domain
}
