package entity

// Settings is the device-level state shown on the settings and chat screens.
// Only VPNEnabled survives a restart.
type Settings struct {
	VPNEnabled     bool   `json:"vpnEnabled"`
	WebViewSession bool   `json:"webViewSession"`
	SelectedLeadID string `json:"selectedLeadId,omitempty"`
}
