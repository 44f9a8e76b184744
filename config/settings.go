package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"gallery.GO/core/cache"
)

// SettingsPathPrefix is the core_config_data root of the module.
const SettingsPathPrefix = "rollpix_gallery"

// SettingsCacheTag tags every memo that depends on module settings.
const SettingsCacheTag = "colorgallery_settings"

const (
	BehaviorHide = "hide"
	BehaviorDim  = "dim"

	PropagationDisabled  = "disabled"
	PropagationAutomatic = "automatic"
	PropagationManual    = "manual"
)

// GallerySettings are the options of the color gallery module.
type GallerySettings struct {
	Enabled              bool          `mapstructure:"enabled"`
	SelectorAttributes   []string      `mapstructure:"selector_attributes" validate:"dive,required"`
	ShowGenericImages    bool          `mapstructure:"show_generic_images"`
	PreselectColor       bool          `mapstructure:"preselect_color"`
	DeepLinkEnabled      bool          `mapstructure:"deep_link_enabled"`
	UpdateURLOnSelect    bool          `mapstructure:"update_url_on_select"`
	StockFilterEnabled   bool          `mapstructure:"stock_filter_enabled"`
	OutOfStockBehavior   string        `mapstructure:"out_of_stock_behavior" validate:"oneof=hide dim"`
	PropagationMode      string        `mapstructure:"propagation_mode" validate:"oneof=disabled automatic manual"`
	PropagationRoles     []string      `mapstructure:"propagation_roles" validate:"dive,required"`
	CleanBeforePropagate bool          `mapstructure:"clean_before_propagate"`
	GalleryAdapter       string        `mapstructure:"gallery_adapter" validate:"required"`
	PropagationSchedule  string        `mapstructure:"propagation_schedule" validate:"required"`
	ConfigCacheTTL       time.Duration `mapstructure:"config_cache_ttl"`
}

// DefaultImageRoles are the roles reset by cleanup.
var DefaultImageRoles = []string{"image", "small_image", "thumbnail", "swatch_image"}

func DefaultGallerySettings() GallerySettings {
	return GallerySettings{
		Enabled:              true,
		SelectorAttributes:   []string{"color"},
		ShowGenericImages:    true,
		PreselectColor:       true,
		DeepLinkEnabled:      true,
		UpdateURLOnSelect:    true,
		StockFilterEnabled:   false,
		OutOfStockBehavior:   BehaviorHide,
		PropagationMode:      PropagationManual,
		PropagationRoles:     []string{"image", "small_image", "thumbnail"},
		CleanBeforePropagate: false,
		GalleryAdapter:       "auto",
		PropagationSchedule:  "@every 15m",
		ConfigCacheTTL:       10 * time.Minute,
	}
}

var validate = validator.New()

func (s GallerySettings) Validate() error {
	return validate.Struct(s)
}

func setSettingsDefaults(v *viper.Viper) {
	d := DefaultGallerySettings()
	v.SetDefault("enabled", d.Enabled)
	v.SetDefault("selector_attributes", d.SelectorAttributes)
	v.SetDefault("show_generic_images", d.ShowGenericImages)
	v.SetDefault("preselect_color", d.PreselectColor)
	v.SetDefault("deep_link_enabled", d.DeepLinkEnabled)
	v.SetDefault("update_url_on_select", d.UpdateURLOnSelect)
	v.SetDefault("stock_filter_enabled", d.StockFilterEnabled)
	v.SetDefault("out_of_stock_behavior", d.OutOfStockBehavior)
	v.SetDefault("propagation_mode", d.PropagationMode)
	v.SetDefault("propagation_roles", d.PropagationRoles)
	v.SetDefault("clean_before_propagate", d.CleanBeforePropagate)
	v.SetDefault("gallery_adapter", d.GalleryAdapter)
	v.SetDefault("propagation_schedule", d.PropagationSchedule)
	v.SetDefault("config_cache_ttl", d.ConfigCacheTTL)
}

// LoadBaseSettings reads defaults, then colorgallery.yaml (path, or the
// working directory and ./config when path is empty), then COLORGALLERY_* env.
func LoadBaseSettings(path string) (GallerySettings, error) {
	v := viper.New()
	setSettingsDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("colorgallery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return DefaultGallerySettings(), fmt.Errorf("read settings: %w", err)
		}
	}
	v.SetEnvPrefix("COLORGALLERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s GallerySettings
	if err := v.Unmarshal(&s); err != nil {
		return DefaultGallerySettings(), fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return DefaultGallerySettings(), fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// ApplyOverlay decodes store-scoped core_config_data values (keyed by the last
// path segment) over base. "1"/"0" booleans and comma lists are accepted. On
// error base is returned unchanged.
func ApplyOverlay(base GallerySettings, overlay map[string]string) (GallerySettings, error) {
	return applyOverlay(base, overlay, false)
}

// CheckSetting reports whether key names a module setting and value is
// accepted for it.
func CheckSetting(key, value string) error {
	_, err := applyOverlay(DefaultGallerySettings(), map[string]string{key: value}, true)
	return err
}

// applyOverlay rejects keys naming no setting when strict.
func applyOverlay(base GallerySettings, overlay map[string]string, strict bool) (GallerySettings, error) {
	if len(overlay) == 0 {
		return base, nil
	}
	out := base
	// lists are replaced, never merged element-wise into the base slices
	if _, ok := overlay["selector_attributes"]; ok {
		out.SelectorAttributes = nil
	}
	if _, ok := overlay["propagation_roles"]; ok {
		out.PropagationRoles = nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		Result:           &out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			trimmedSliceHook(),
		),
	})
	if err != nil {
		return base, err
	}
	input := make(map[string]interface{}, len(overlay))
	for k, v := range overlay {
		input[k] = v
	}
	if err := dec.Decode(input); err != nil {
		return base, fmt.Errorf("decode overlay: %w", err)
	}
	if err := out.Validate(); err != nil {
		return base, fmt.Errorf("invalid overlay: %w", err)
	}
	return out, nil
}

// trimmedSliceHook splits comma lists, trimming blanks and dropping empties.
func trimmedSliceHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}
		parts := strings.Split(data.(string), ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	}
}

// OverlaySource supplies core_config_data values for a store.
type OverlaySource interface {
	StoreValues(ctx context.Context, prefix string, storeID uint16) (map[string]string, error)
}

// StoreSettings resolves the effective settings of a store: base settings with
// the store's core_config_data overlay, memoized until Invalidate.
type StoreSettings struct {
	base   GallerySettings
	source OverlaySource
	memo   *cache.Cache
	onErr  func(storeID uint16, err error)
}

func NewStoreSettings(base GallerySettings, source OverlaySource, memo *cache.Cache, onErr func(uint16, error)) *StoreSettings {
	if memo == nil {
		memo = cache.NewCache()
	}
	if onErr == nil {
		onErr = func(uint16, error) {}
	}
	return &StoreSettings{base: base, source: source, memo: memo, onErr: onErr}
}

// For returns the settings of storeID. Lookup or decode failures fall back to
// the base settings.
func (s *StoreSettings) For(ctx context.Context, storeID uint16) GallerySettings {
	v, _ := s.memo.Remember(cache.Key("settings", storeID), 0, []string{SettingsCacheTag}, func() (interface{}, error) {
		if s.source == nil {
			return s.base, nil
		}
		overlay, err := s.source.StoreValues(ctx, SettingsPathPrefix, storeID)
		if err != nil {
			s.onErr(storeID, err)
			return s.base, nil
		}
		out, err := ApplyOverlay(s.base, overlay)
		if err != nil {
			s.onErr(storeID, err)
		}
		return out, nil
	})
	return v.(GallerySettings)
}

// Invalidate drops every settings-dependent memo.
func (s *StoreSettings) Invalidate() {
	s.memo.DeleteByTag(SettingsCacheTag)
}
