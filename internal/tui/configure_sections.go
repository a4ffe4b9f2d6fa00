package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprnote/internal/config"
	"github.com/leonardotrapani/hyprnote/internal/language"
	"github.com/leonardotrapani/hyprnote/internal/reldate"
)

func getProviderDisplayName(providerName string) string {
	if name, ok := providerDisplayNames[providerName]; ok {
		return name
	}
	return providerName
}

// maskAPIKey returns a masked version of an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// getConfiguredProviders returns the providers with an API key in the
// config file, sorted.
func getConfiguredProviders(cfg *config.Config) []string {
	providers := make([]string, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

func formatProvidersLabel(cfg *config.Config) string {
	configured := getConfiguredProviders(cfg)
	if len(configured) == 0 {
		return "Providers: none configured"
	}
	return "Providers: " + strings.Join(configured, ", ")
}

func formatRecognitionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Recognition: %s (%s, %s)", cfg.Recognition.Provider, cfg.Recognition.Model, cfg.Recognition.Language)
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications: disabled"
	}
	return "Notifications: " + cfg.Notifications.Type
}

func formatProviderOption(cfg *config.Config, name string) string {
	label := getProviderDisplayName(name)
	if pc, ok := cfg.Providers[name]; ok && pc.APIKey != "" {
		return label + " [" + maskAPIKey(pc.APIKey) + "]"
	}
	if env := config.EnvVarForProvider(name); env != "" && cfg.ResolveAPIKey(name) != "" {
		return label + " [from $" + env + "]"
	}
	return label
}

// editProviders lets the user set or clear an API key per provider.
func editProviders(cfg *config.Config) error {
	for {
		var options []huh.Option[string]
		for _, name := range AllProviders {
			options = append(options, huh.NewOption(formatProviderOption(cfg, name), name))
		}
		options = append(options, huh.NewOption("Done", "back"))

		var selected string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Provider Settings").
					Description("Select a provider to configure its API key").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}
		if selected == "back" {
			return nil
		}

		var apiKey string
		desc := "Leave empty to remove the key"
		if env := config.EnvVarForProvider(selected); env != "" {
			desc += " (the $" + env + " variable is used instead)"
		}
		keyForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(getProviderDisplayName(selected) + " API key").
					Description(desc).
					EchoMode(huh.EchoModePassword).
					Value(&apiKey),
			),
		).WithTheme(getTheme())
		if err := keyForm.Run(); err != nil {
			continue
		}

		apiKey = strings.TrimSpace(apiKey)
		if apiKey == "" {
			delete(cfg.Providers, selected)
		} else {
			cfg.Providers[selected] = config.ProviderConfig{APIKey: apiKey}
		}
	}
}

func languageOptions(current string) []huh.Option[string] {
	var options []huh.Option[string]
	seen := false
	for _, l := range language.Suggested() {
		if l.Tag == current {
			seen = true
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", l.NativeName, l.Tag), l.Tag))
	}
	if !seen && current != "" {
		l := language.FromTag(current)
		options = append([]huh.Option[string]{huh.NewOption(fmt.Sprintf("%s (%s)", l.NativeName, l.Tag), l.Tag)}, options...)
	}
	return options
}

// editRecognition edits the provider, language, model and chunk interval.
func editRecognition(cfg *config.Config) error {
	rc := cfg.Recognition
	prevProvider := rc.Provider
	interval := rc.ChunkInterval.String()

	var providerOptions []huh.Option[string]
	for _, name := range AllProviders {
		providerOptions = append(providerOptions, huh.NewOption(getProviderDisplayName(name), name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Recognition provider").
				Options(providerOptions...).
				Value(&rc.Provider),
			huh.NewSelect[string]().
				Title("Language").
				Description("Language spoken in your notes").
				Options(languageOptions(rc.Language)...).
				Value(&rc.Language),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	if rc.Provider != prevProvider {
		rc.Model = config.DefaultModel(rc.Provider)
		rc.Endpoint = ""
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Model").
			Value(&rc.Model).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("model is required")
				}
				return nil
			}),
		huh.NewInput().
			Title("Endpoint").
			Description("Leave empty for the provider default").
			Value(&rc.Endpoint),
	}
	if rc.Provider == "openai" {
		fields = append(fields, huh.NewInput().
			Title("Chunk interval").
			Description("How often the audio recorded so far is transcribed, e.g. 4s").
			Value(&interval).
			Validate(validatePositiveDuration))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(getTheme()).Run(); err != nil {
		return err
	}

	if d, err := time.ParseDuration(interval); err == nil {
		rc.ChunkInterval = d
	}
	rc.Model = strings.TrimSpace(rc.Model)
	rc.Endpoint = strings.TrimSpace(rc.Endpoint)
	cfg.Recognition = rc
	return nil
}

func validatePositiveDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func editNotes(cfg *config.Config) error {
	var options []huh.Option[string]
	for _, l := range reldate.Locales() {
		options = append(options, huh.NewOption(l+" ("+reldate.Label(time.Now().Add(-5*time.Minute), time.Now(), l)+")", l))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Date labels").
				Description("Locale of the relative creation date on note cards").
				Options(options...).
				Value(&cfg.Notes.DateLocale),
		),
	).WithTheme(getTheme()).Run()
}

func editNotifications(cfg *config.Config) error {
	n := cfg.Notifications
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Value(&n.Enabled),
			huh.NewSelect[string]().
				Title("Notification type").
				Options(
					huh.NewOption("Desktop (notify-send)", "desktop"),
					huh.NewOption("Log only", "log"),
					huh.NewOption("None", "none"),
				).
				Value(&n.Type),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Notifications = n
	return nil
}

func editRecording(cfg *config.Config) error {
	rc := cfg.Recording
	sampleRate := strconv.Itoa(rc.SampleRate)
	bufferSize := strconv.Itoa(rc.BufferSize)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample rate").
				Value(&sampleRate).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Buffer size").
				Value(&bufferSize).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Device").
				Description("PipeWire target; empty for the default source").
				Value(&rc.Device),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	rc.SampleRate, _ = strconv.Atoi(sampleRate)
	rc.BufferSize, _ = strconv.Atoi(bufferSize)
	cfg.Recording = rc
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

// showSummary prints the configuration and asks whether to save it.
func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()

	configured := getConfiguredProviders(cfg)
	if len(configured) == 0 {
		configured = []string{"none (environment only)"}
	}
	fmt.Printf("  %s %s\n", StyleLabel.Render("Providers:"), strings.Join(configured, ", "))
	fmt.Printf("  %s %s (%s)\n", StyleLabel.Render("Recognition:"), cfg.Recognition.Provider, cfg.Recognition.Model)
	fmt.Printf("  %s %s\n", StyleLabel.Render("Language:"), cfg.Recognition.Language)
	if cfg.Recognition.Provider == "openai" {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Chunk interval:"), cfg.Recognition.ChunkInterval)
	}
	if cfg.ResolveAPIKey(cfg.Recognition.Provider) == "" {
		fmt.Printf("  %s\n", StyleWarning.Render("No API key for "+cfg.Recognition.Provider+": recording will be unavailable"))
	}
	fmt.Printf("  %s %s\n", StyleLabel.Render("Date labels:"), cfg.Notes.DateLocale)
	fmt.Printf("  %s %s\n", StyleLabel.Render("Notifications:"), formatNotificationsLabel(cfg))
	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
