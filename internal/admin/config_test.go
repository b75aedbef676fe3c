package admin

import "testing"

func TestMaskKey(t *testing.T) {
	tests := map[string]struct {
		key  string
		want string
	}{
		"empty":  {key: "", want: "****"},
		"short":  {key: "abcd", want: "****"},
		"normal": {key: "0123456789abcdef", want: "****cdef"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := MaskKey(tc.key); got != tc.want {
				t.Errorf("MaskKey(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestUsable(t *testing.T) {
	tests := map[string]struct {
		cfg  Config
		want bool
	}{
		"real key":    {cfg: Config{APIKey: "abc", ProviderType: ProviderTheOddsAPI}, want: true},
		"empty key":   {cfg: Config{ProviderType: ProviderTheOddsAPI}, want: false},
		"placeholder": {cfg: Config{APIKey: PlaceholderKey, ProviderType: ProviderTheOddsAPI}, want: false},
		"unsupported": {cfg: Config{APIKey: "abc", ProviderType: "sportradar"}, want: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.cfg.Usable(); got != tc.want {
				t.Errorf("Usable() = %v, want %v", got, tc.want)
			}
		})
	}
}
