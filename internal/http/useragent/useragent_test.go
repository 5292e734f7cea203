package useragent

import (
	"testing"

	"github.com/relinkd/relink/internal/app/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want model.DeviceClass
	}{
		{
			name: "iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1",
			want: model.DeviceIOS,
		},
		{
			name: "ipad",
			ua:   "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148",
			want: model.DeviceTablet,
		},
		{
			name: "android phone",
			ua:   "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			want: model.DeviceAndroid,
		},
		{
			name: "android tablet",
			ua:   "Mozilla/5.0 (Linux; Android 13; SM-X900) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			want: model.DeviceTablet,
		},
		{
			name: "kindle",
			ua:   "Mozilla/5.0 (Linux; U; en-us; KFTHWI Build/JDQ39) AppleWebKit/535.19 Silk/3.16",
			want: model.DeviceTablet,
		},
		{
			name: "generic mobile",
			ua:   "Mozilla/5.0 (Mobile; rv:109.0) Gecko/109.0 Firefox/119.0",
			want: model.DeviceMobile,
		},
		{
			name: "desktop chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			want: model.DeviceDesktop,
		},
		{
			name: "empty",
			ua:   "",
			want: model.DeviceDesktop,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.ua); got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.ua, got, tc.want)
			}
		})
	}
}
