package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/connect360/tagdrop/models"
	"github.com/connect360/tagdrop/ratelimit"
)

const (
	MessageMaxChars     = 300
	MessageTTLDays      = 7
	MaxMessagesPerFetch = 100
)

var (
	ErrRateLimited   = errors.New("rate limited")
	ErrContentLength = errors.New("message length must be between 1 and 300 characters")
)

// FetchDropMessages runs the read path: rate gates, then format gate, then
// hash and fetch. A malformed token is not an error; it returns an empty
// list, structurally identical to a valid token with an empty inbox.
func (s *Service) FetchDropMessages(ctx context.Context, token string, requesterIP string) ([]models.DropMessage, error) {
	ipAllowed := s.Limiter.Consume(ratelimit.ScopeDropGetIP, requesterIP, ratelimit.MaxGetsPerIPDefault, ratelimit.Window)
	tokenAllowed := s.Limiter.Consume(ratelimit.ScopeDropGetToken, token, ratelimit.MaxGetsPerTokenDefault, ratelimit.Window)
	if !ipAllowed || !tokenAllowed {
		return nil, ErrRateLimited
	}

	if !s.Tokens.IsValidFormat(token) {
		return []models.DropMessage{}, nil
	}

	return s.Store.FetchActiveDropMessages(ctx, s.Tokens.Hash(token), MaxMessagesPerFetch)
}

// SubmitDropMessage runs the write path. The returned bool reports whether a
// message was accepted from the caller's point of view; it is deliberately
// true for well-formed requests against a malformed token, where nothing is
// stored. Acceptance must not work as a token-validity oracle.
func (s *Service) SubmitDropMessage(ctx context.Context, token string, rawContent string, requesterIP string) (bool, error) {
	ipAllowed := s.Limiter.Consume(ratelimit.ScopeDropPostIP, requesterIP, ratelimit.MaxPostsPerIPDefault, ratelimit.Window)
	tokenAllowed := s.Limiter.Consume(ratelimit.ScopeDropPostToken, token, ratelimit.MaxPostsPerTokenDefault, ratelimit.Window)
	if !ipAllowed || !tokenAllowed {
		return false, ErrRateLimited
	}

	trimmed := strings.TrimSpace(rawContent)
	charCount := utf8.RuneCountInString(trimmed)
	if charCount < 1 || charCount > MessageMaxChars {
		// The one caller-distinguishable rejection: input length is
		// user-correctable and carries no token-validity signal.
		return false, ErrContentLength
	}

	if !s.Tokens.IsValidFormat(token) {
		return true, nil
	}

	return s.Store.InsertDropMessage(ctx, s.Tokens.Hash(token), SanitizeDropContent(trimmed))
}

// GenerateDropToken issues a fresh random public token.
func (s *Service) GenerateDropToken() (string, error) {
	return s.Tokens.Generate()
}
