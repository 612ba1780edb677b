package preferences

// Well-known preference keys.
const (
	KeyCurrency          = "display.currency"
	KeyTheme             = "display.theme"
	KeyLanguage          = "display.language"
	KeyHideSmallBalances = "display.hide_small_balances"
	KeyHideBalances      = "privacy.hide_balances"
	KeyBiometrics        = "security.biometrics_enabled"
	KeyAutoLockMinutes   = "security.auto_lock_minutes"
	KeyDefaultChainID    = "network.default_chain_id"
	KeyTestnets          = "network.show_testnets"
	KeyNotifications     = "notifications.enabled"
)

// Defaults is the value of every preference that was never set.
var Defaults = map[string]any{
	KeyCurrency:          "USD",
	KeyTheme:             "system",
	KeyLanguage:          "en",
	KeyHideSmallBalances: false,
	KeyHideBalances:      false,
	KeyBiometrics:        false,
	KeyAutoLockMinutes:   5,
	KeyDefaultChainID:    1,
	KeyTestnets:          false,
	KeyNotifications:     true,
}
