package sections_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/confkit/enable"
	"github.com/confkit/enable/sections"
)

type redisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password" section:",redact"`
}

func (c redisConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("addr cannot be empty")
	}
	return nil
}

type smtpConfig struct {
	Host string `toml:"host"`
}

type serverConfig struct {
	Redis    enable.Enable[redisConfig] `section:"redis"`
	SMTP     enable.Enable[smtpConfig]  `toml:"smtp"`
	BindAddr string                     `toml:"bind-addr"`
}

func testConfig() *serverConfig {
	return &serverConfig{
		Redis:    enable.On(redisConfig{Addr: "localhost:6379", Password: "hunter2"}),
		SMTP:     enable.Off[smtpConfig](),
		BindAddr: ":9092",
	}
}

func TestNames(t *testing.T) {
	names, err := sections.Names(testConfig())
	require.NoError(t, err)
	require.Equal(t, []string{"redis", "smtp"}, names)
}

func TestSummary(t *testing.T) {
	summary, err := sections.Summary(testConfig())
	require.NoError(t, err)
	require.Equal(t, map[string]bool{
		"redis": true,
		"smtp":  false,
	}, summary)
}

func TestSummary_ByValue(t *testing.T) {
	// A config passed by value can still be summarized.
	summary, err := sections.Summary(*testConfig())
	require.NoError(t, err)
	require.Equal(t, map[string]bool{
		"redis": true,
		"smtp":  false,
	}, summary)
}

func TestApply_Enable(t *testing.T) {
	c := testConfig()
	updated, err := sections.Apply(c, sections.Toggle{
		Section: "smtp",
		Enabled: true,
		Options: map[string]interface{}{"host": "mail.example.com:25"},
	})
	require.NoError(t, err)

	got, ok := updated.(*serverConfig)
	require.True(t, ok)
	require.True(t, got.SMTP.IsEnabled())
	inner, _ := got.SMTP.Inner()
	require.Equal(t, "mail.example.com:25", inner.Host)

	// The original is untouched.
	require.False(t, c.SMTP.IsEnabled())
	require.Equal(t, ":9092", got.BindAddr)
}

func TestApply_PartialUpdate(t *testing.T) {
	c := testConfig()
	updated, err := sections.Apply(c, sections.Toggle{
		Section: "redis",
		Enabled: true,
		Options: map[string]interface{}{"password": "rotated"},
	})
	require.NoError(t, err)

	got := updated.(*serverConfig)
	inner, _ := got.Redis.Inner()
	require.Equal(t, "localhost:6379", inner.Addr, "options merge over the current state")
	require.Equal(t, "rotated", inner.Password)

	orig, _ := c.Redis.Inner()
	require.Equal(t, "hunter2", orig.Password, "the original is untouched")
}

func TestApply_Disable(t *testing.T) {
	c := testConfig()
	updated, err := sections.Apply(c, sections.Toggle{
		Section: "redis",
		Enabled: false,
	})
	require.NoError(t, err)

	got := updated.(*serverConfig)
	require.False(t, got.Redis.IsEnabled())
	require.Nil(t, got.Redis.InnerRef(), "a disabled section drops its payload")
	require.True(t, c.Redis.IsEnabled(), "the original is untouched")
}

func TestApply_UnknownSection(t *testing.T) {
	_, err := sections.Apply(testConfig(), sections.Toggle{
		Section: "kafka",
		Enabled: true,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown section kafka")
}

func TestApply_FailedValidation(t *testing.T) {
	c := testConfig()
	c.Redis = enable.Off[redisConfig]()
	_, err := sections.Apply(c, sections.Toggle{
		Section: "redis",
		Enabled: true,
		// No addr: redisConfig.Validate must reject the new state.
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed validation")
}

func TestApply_RequiresPointer(t *testing.T) {
	_, err := sections.Apply(*testConfig(), sections.Toggle{
		Section: "smtp",
		Enabled: false,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be a pointer")
}

func TestToggle_Validate(t *testing.T) {
	tests := []struct {
		name    string
		toggle  sections.Toggle
		wantErr string
	}{
		{
			name:   "enable with options",
			toggle: sections.Toggle{Section: "smtp", Enabled: true, Options: map[string]interface{}{"host": "h"}},
		},
		{
			name:   "plain disable",
			toggle: sections.Toggle{Section: "smtp"},
		},
		{
			name:    "empty section",
			toggle:  sections.Toggle{},
			wantErr: "section cannot be empty",
		},
		{
			name:    "options while disabling",
			toggle:  sections.Toggle{Section: "smtp", Options: map[string]interface{}{"host": "h"}},
			wantErr: "cannot provide options when disabling",
		},
		{
			name:    "enable via options",
			toggle:  sections.Toggle{Section: "smtp", Enabled: true, Options: map[string]interface{}{"enable": true}},
			wantErr: "cannot set the enable field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.toggle.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedacted(t *testing.T) {
	redacted, err := sections.Redacted(testConfig())
	require.NoError(t, err)
	require.Equal(t, map[string]map[string]interface{}{
		"redis": {
			"enable":   true,
			"addr":     "localhost:6379",
			"password": true,
		},
		"smtp": {
			"enable": false,
		},
	}, redacted)
}

func ExampleSummary() {
	c := &serverConfig{
		Redis: enable.On(redisConfig{Addr: "localhost:6379"}),
		SMTP:  enable.Off[smtpConfig](),
	}
	summary, err := sections.Summary(c)
	if err != nil {
		fmt.Println(err)
		return
	}
	names, _ := sections.Names(c)
	for _, name := range names {
		state := "disabled"
		if summary[name] {
			state = "enabled"
		}
		fmt.Println(name + " " + state)
	}
	// Output:
	// redis enabled
	// smtp disabled
}

func TestApply_InvalidToggle(t *testing.T) {
	_, err := sections.Apply(testConfig(), sections.Toggle{})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "invalid toggle"))
}
