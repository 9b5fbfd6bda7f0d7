package panotour

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"
)

// SurfaceConfig describes the background cylinder.
type SurfaceConfig struct {
	Radius         float64 `mapstructure:"radius"`
	WidthSegments  int     `mapstructure:"widthSegments"`
	HeightSegments int     `mapstructure:"heightSegments"`
}

// MarkerConfig places markers. Hotspots and infospots sit on their own
// cylinders inside the background surface.
type MarkerConfig struct {
	HotspotRadius  float64 `mapstructure:"hotspotRadius"`
	InfospotRadius float64 `mapstructure:"infospotRadius"`
	HitRadius      float64 `mapstructure:"hitRadius"`
	ShowLabels     bool    `mapstructure:"showLabels"`
	LabelDrop      float64 `mapstructure:"labelDrop"`
	LabelScale     float64 `mapstructure:"labelScale"`
}

type AnimationConfig struct {
	NormalScale    float64 `mapstructure:"normalScale"`
	HoverScale     float64 `mapstructure:"hoverScale"`
	PulseSpeed     float64 `mapstructure:"pulseSpeed"`
	PulseAmount    float64 `mapstructure:"pulseAmount"`
	RotationSpeed  float64 `mapstructure:"rotationSpeed"`
	RotationAmount float64 `mapstructure:"rotationAmount"`
	NormalColor    string  `mapstructure:"normalColor"`
	HoverColor     string  `mapstructure:"hoverColor"`
	LerpFactor     float64 `mapstructure:"lerpFactor"`
	ClickBump      float64 `mapstructure:"clickBump"`
}

type PickConfig struct {
	MouseTolerance float64 `mapstructure:"mouseTolerance"`
	TouchTolerance float64 `mapstructure:"touchTolerance"`
	DragThreshold  float64 `mapstructure:"dragThreshold"`
}

// CameraConfig angles are in degrees.
type CameraConfig struct {
	FOV        float64 `mapstructure:"fov"`
	MinFOV     float64 `mapstructure:"minFov"`
	MaxFOV     float64 `mapstructure:"maxFov"`
	YawLimit   float64 `mapstructure:"yawLimit"`
	PitchLimit float64 `mapstructure:"pitchLimit"`
	RotateRate float64 `mapstructure:"rotateRate"`
}

type NavigationConfig struct {
	DefaultPanorama int           `mapstructure:"defaultPanorama"`
	LoadTimeout     time.Duration `mapstructure:"loadTimeout"`
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryBackoff    time.Duration `mapstructure:"retryBackoff"`
	MaxBackoff      time.Duration `mapstructure:"maxBackoff"`
}

type AssetConfig struct {
	BaseDir        string `mapstructure:"baseDir"`
	HotspotIcon    string `mapstructure:"hotspotIcon"`
	InfospotIcon   string `mapstructure:"infospotIcon"`
	MaxTextureSize int    `mapstructure:"maxTextureSize"`
	CacheEntries   int    `mapstructure:"cacheEntries"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// Config is the full set of viewer knobs.
type Config struct {
	Tour       string           `mapstructure:"tour"`
	Surface    SurfaceConfig    `mapstructure:"surface"`
	Markers    MarkerConfig     `mapstructure:"markers"`
	Animation  AnimationConfig  `mapstructure:"animation"`
	Pick       PickConfig       `mapstructure:"pick"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Assets     AssetConfig      `mapstructure:"assets"`
	Log        LogConfig        `mapstructure:"log"`
	Window     WindowConfig     `mapstructure:"window"`
}

// DefaultConfig returns the stock viewer settings.
func DefaultConfig() Config {
	return Config{
		Tour: "tour.yaml",
		Surface: SurfaceConfig{
			Radius:         500,
			WidthSegments:  60,
			HeightSegments: 40,
		},
		Markers: MarkerConfig{
			HotspotRadius:  35,
			InfospotRadius: 35,
			HitRadius:      2.5,
			ShowLabels:     true,
			LabelDrop:      -2,
			LabelScale:     1.05,
		},
		Animation: AnimationConfig{
			NormalScale:    5,
			HoverScale:     6,
			PulseSpeed:     0.3,
			PulseAmount:    0.05,
			RotationSpeed:  0.02,
			RotationAmount: 0.7,
			NormalColor:    "#ffffff",
			HoverColor:     "#c1c1c1",
			LerpFactor:     0.05,
			ClickBump:      1.2,
		},
		Pick: PickConfig{
			MouseTolerance: DefaultMouseTolerance,
			TouchTolerance: DefaultTouchTolerance,
			DragThreshold:  DefaultDragThreshold,
		},
		Camera: CameraConfig{
			FOV:        60,
			MinFOV:     20,
			MaxFOV:     75,
			YawLimit:   130,
			PitchLimit: 0,
			RotateRate: 0.25,
		},
		Navigation: NavigationConfig{
			DefaultPanorama: 1,
			LoadTimeout:     30 * time.Second,
			RetryAttempts:   3,
			RetryBackoff:    500 * time.Millisecond,
			MaxBackoff:      5 * time.Second,
		},
		Assets: AssetConfig{
			BaseDir:        ".",
			HotspotIcon:    "location.png",
			InfospotIcon:   "info.png",
			MaxTextureSize: 8192,
			CacheEntries:   6,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "panotour",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("tour", d.Tour)

	v.SetDefault("surface.radius", d.Surface.Radius)
	v.SetDefault("surface.widthSegments", d.Surface.WidthSegments)
	v.SetDefault("surface.heightSegments", d.Surface.HeightSegments)

	v.SetDefault("markers.hotspotRadius", d.Markers.HotspotRadius)
	v.SetDefault("markers.infospotRadius", d.Markers.InfospotRadius)
	v.SetDefault("markers.hitRadius", d.Markers.HitRadius)
	v.SetDefault("markers.showLabels", d.Markers.ShowLabels)
	v.SetDefault("markers.labelDrop", d.Markers.LabelDrop)
	v.SetDefault("markers.labelScale", d.Markers.LabelScale)

	v.SetDefault("animation.normalScale", d.Animation.NormalScale)
	v.SetDefault("animation.hoverScale", d.Animation.HoverScale)
	v.SetDefault("animation.pulseSpeed", d.Animation.PulseSpeed)
	v.SetDefault("animation.pulseAmount", d.Animation.PulseAmount)
	v.SetDefault("animation.rotationSpeed", d.Animation.RotationSpeed)
	v.SetDefault("animation.rotationAmount", d.Animation.RotationAmount)
	v.SetDefault("animation.normalColor", d.Animation.NormalColor)
	v.SetDefault("animation.hoverColor", d.Animation.HoverColor)
	v.SetDefault("animation.lerpFactor", d.Animation.LerpFactor)
	v.SetDefault("animation.clickBump", d.Animation.ClickBump)

	v.SetDefault("pick.mouseTolerance", d.Pick.MouseTolerance)
	v.SetDefault("pick.touchTolerance", d.Pick.TouchTolerance)
	v.SetDefault("pick.dragThreshold", d.Pick.DragThreshold)

	v.SetDefault("camera.fov", d.Camera.FOV)
	v.SetDefault("camera.minFov", d.Camera.MinFOV)
	v.SetDefault("camera.maxFov", d.Camera.MaxFOV)
	v.SetDefault("camera.yawLimit", d.Camera.YawLimit)
	v.SetDefault("camera.pitchLimit", d.Camera.PitchLimit)
	v.SetDefault("camera.rotateRate", d.Camera.RotateRate)

	v.SetDefault("navigation.defaultPanorama", d.Navigation.DefaultPanorama)
	v.SetDefault("navigation.loadTimeout", d.Navigation.LoadTimeout)
	v.SetDefault("navigation.retryAttempts", d.Navigation.RetryAttempts)
	v.SetDefault("navigation.retryBackoff", d.Navigation.RetryBackoff)
	v.SetDefault("navigation.maxBackoff", d.Navigation.MaxBackoff)

	v.SetDefault("assets.baseDir", d.Assets.BaseDir)
	v.SetDefault("assets.hotspotIcon", d.Assets.HotspotIcon)
	v.SetDefault("assets.infospotIcon", d.Assets.InfospotIcon)
	v.SetDefault("assets.maxTextureSize", d.Assets.MaxTextureSize)
	v.SetDefault("assets.cacheEntries", d.Assets.CacheEntries)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.height", d.Window.Height)
	v.SetDefault("window.title", d.Window.Title)
}

// LoadConfig reads configuration from fileName (yaml, json or toml; empty
// means defaults only). Any key can be overridden from the environment with
// the PANOTOUR_ prefix, e.g. PANOTOUR_PICK_TOUCHTOLERANCE.
func LoadConfig(fileName string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("panotour")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fileName != "" {
		v.SetConfigFile(fileName)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the viewer cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Surface.Radius <= 0:
		return fmt.Errorf("surface.radius must be positive")
	case c.Surface.WidthSegments < 3 || c.Surface.HeightSegments < 1:
		return fmt.Errorf("surface needs at least 3 width segments and 1 height segment")
	case c.Markers.HotspotRadius <= 0 || c.Markers.InfospotRadius <= 0:
		return fmt.Errorf("marker radii must be positive")
	case c.Markers.HotspotRadius >= c.Surface.Radius || c.Markers.InfospotRadius >= c.Surface.Radius:
		return fmt.Errorf("markers must sit inside the surface radius %v", c.Surface.Radius)
	case c.Pick.MouseTolerance < 0:
		return fmt.Errorf("pick.mouseTolerance must not be negative")
	case c.Pick.TouchTolerance <= c.Pick.MouseTolerance:
		return fmt.Errorf("pick.touchTolerance (%v) must be larger than pick.mouseTolerance (%v)",
			c.Pick.TouchTolerance, c.Pick.MouseTolerance)
	case c.Animation.LerpFactor <= 0 || c.Animation.LerpFactor > 1:
		return fmt.Errorf("animation.lerpFactor must be in (0,1]")
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("camera.fov must be in (0,180)")
	case c.Navigation.LoadTimeout <= 0:
		return fmt.Errorf("navigation.loadTimeout must be positive")
	case c.Navigation.RetryAttempts < 0:
		return fmt.Errorf("navigation.retryAttempts must not be negative")
	case c.Assets.CacheEntries < 0:
		return fmt.Errorf("assets.cacheEntries must not be negative")
	}
	if _, err := ParseHexColor(c.Animation.NormalColor); err != nil {
		return fmt.Errorf("animation.normalColor: %w", err)
	}
	if _, err := ParseHexColor(c.Animation.HoverColor); err != nil {
		return fmt.Errorf("animation.hoverColor: %w", err)
	}
	return nil
}

// ParseHexColor parses "#rrggbb" (the # is optional) into components in [0,1].
func ParseHexColor(s string) (mgl64.Vec3, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return mgl64.Vec3{}, fmt.Errorf("invalid color %q", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return mgl64.Vec3{
		float64((n>>16)&0xff) / 255,
		float64((n>>8)&0xff) / 255,
		float64(n&0xff) / 255,
	}, nil
}
