package usecase

import (
	"context"

	"github.com/xavierca1/leadbridge/internal/entity"
)

func (s *Store) Settings() entity.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// ToggleVPN flips the VPN flag, persists it and returns the new value.
func (s *Store) ToggleVPN(ctx context.Context) (bool, error) {
	var enabled bool
	_, err := s.mutate(ctx, func() (*change, error) {
		s.settings.VPNEnabled = !s.settings.VPNEnabled
		enabled = s.settings.VPNEnabled
		return &change{
			event:   ChangeEvent{Type: EventSettingsUpdate, Entity: "settings", ID: KeyVPNEnabled},
			persist: true,
		}, nil
	})
	return enabled, err
}

// ClearWebViewSession marks the chat session as logged out. Remote session
// data is not touched; there is no chat backend.
func (s *Store) ClearWebViewSession(ctx context.Context) error {
	_, err := s.mutate(ctx, func() (*change, error) {
		s.settings.WebViewSession = false
		return &change{event: ChangeEvent{Type: EventSettingsUpdate, Entity: "settings", ID: "webViewSession"}}, nil
	})
	if err == nil {
		s.logger.Info("web view session cleared")
	}
	return err
}

func (s *Store) OpenWebViewSession(ctx context.Context) error {
	_, err := s.mutate(ctx, func() (*change, error) {
		s.settings.WebViewSession = true
		return &change{event: ChangeEvent{Type: EventSettingsUpdate, Entity: "settings", ID: "webViewSession"}}, nil
	})
	return err
}

// SelectLead sets the lead shown in the chat view. An empty id clears it.
func (s *Store) SelectLead(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, func() (*change, error) {
		if id != "" && s.leadIndexLocked(id) < 0 {
			return nil, unknownLead(id)
		}
		s.settings.SelectedLeadID = id
		return &change{event: ChangeEvent{Type: EventSettingsUpdate, Entity: "settings", ID: "selectedLeadId", LeadID: id}}, nil
	})
	return err
}
