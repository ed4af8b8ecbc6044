package eac

// Struct field order below matches the device writer's serialization
// (alphabetical keys), so marshaling a freshly built configuration is
// byte-identical to what the firmware itself writes.

// ActivityConfig is the stored per-activity document.
type ActivityConfig struct {
	ClsName           string        `json:"clsName"`
	DisableScrollAnim bool          `json:"disableScrollAnim"`
	DisplayConfig     DisplayConfig `json:"displayConfig"`
	Enable            bool          `json:"enable"`
	NoteConfig        NoteConfig    `json:"noteConfig"`
	PaintConfig       PaintConfig   `json:"paintConfig"`
	RefreshConfig     RefreshConfig `json:"refreshConfig"`
}

// DisplayConfig tunes greyscale rendering for the activity.
type DisplayConfig struct {
	BWMode                int  `json:"bwMode"`
	CFAColorBrightness    int  `json:"cfaColorBrightness"`
	CFAColorSaturation    int  `json:"cfaColorSaturation"`
	CFAColorSaturationMin int  `json:"cfaColorSaturationMin"`
	Contrast              int  `json:"contrast"`
	DitherThreshold       int  `json:"ditherThreshold"`
	Enable                bool `json:"enable"`
	Enhance               bool `json:"enhance"`
	MonoLevel             int  `json:"monoLevel"`
}

// NoteConfig carries the handwriting wiring. Its enable flag plus a
// non-empty DrawViewKey is what the active test checks.
type NoteConfig struct {
	CompatibleVersionCode int                    `json:"compatibleVersionCode"`
	DrawViewKey           string                 `json:"drawViewKey"`
	Enable                bool                   `json:"enable"`
	GlobalStrokeStyle     StrokeStyle            `json:"globalStrokeStyle"`
	RepaintLatency        int                    `json:"repaintLatency"`
	StyleMap              map[string]StrokeStyle `json:"styleMap"`
	SupportNoteConfig     bool                   `json:"supportNoteConfig"`
}

// StrokeStyle describes one pen configuration.
type StrokeStyle struct {
	Enable          bool  `json:"enable"`
	StrokeColor     int   `json:"strokeColor"`
	StrokeExtraArgs []any `json:"strokeExtraArgs"`
	StrokeParams    []any `json:"strokeParams"`
	StrokeStyle     int   `json:"strokeStyle"`
	StrokeWidth     int   `json:"strokeWidth"`
}

// PaintConfig tunes how app content is rasterized for the panel.
type PaintConfig struct {
	AntiAlisingType int  `json:"antiAlisingType"`
	DitherBitmap    bool `json:"ditherBitmap"`
	Enable          bool `json:"enable"`
	FillBrightness  int  `json:"fillBrightness"`
	FillContrast    int  `json:"fillContrast"`
	FillEAC         bool `json:"fillEAC"`
	IconBrightness  int  `json:"iconBrightness"`
	IconContrast    int  `json:"iconContrast"`
	IconEAC         bool `json:"iconEAC"`
	IconThreshold   int  `json:"iconThreshold"`
	ImgEAC          bool `json:"imgEAC"`
	ImgGamma        int  `json:"imgGamma"`
	QuantBits       int  `json:"quantBits"`
	TextBold        bool `json:"textBold"`
	TextEACType     int  `json:"textEACType"`
}

// RefreshConfig tunes panel refresh scheduling.
type RefreshConfig struct {
	AnimationDuration  int  `json:"animationDuration"`
	AntiFlicker        int  `json:"antiFlicker"`
	Enable             bool `json:"enable"`
	GCInterval         int  `json:"gcInterval"`
	SupportRegal       bool `json:"supportRegal"`
	Turbo              int  `json:"turbo"`
	UpdateMode         int  `json:"updateMode"`
	UseGCForNewSurface bool `json:"useGCForNewSurface"`
}

// NewActivityConfig builds the "handwriting optimization on" entry for
// one activity. The values are fixed policy constants the firmware
// expects, not tunable inputs; every field is written out so the whole
// table is visible here.
func NewActivityConfig(drawViewKey, activityID string) ActivityConfig {
	return ActivityConfig{
		ClsName:           activityID,
		DisableScrollAnim: false,
		DisplayConfig: DisplayConfig{
			BWMode:                0,
			CFAColorBrightness:    0,
			CFAColorSaturation:    0,
			CFAColorSaturationMin: 60,
			Contrast:              30,
			DitherThreshold:       128,
			Enable:                true,
			Enhance:               true,
			MonoLevel:             10,
		},
		Enable: true,
		NoteConfig: NoteConfig{
			CompatibleVersionCode: 0,
			DrawViewKey:           drawViewKey,
			Enable:                true,
			GlobalStrokeStyle: StrokeStyle{
				Enable:          true,
				StrokeColor:     -16777216, // opaque black
				StrokeExtraArgs: []any{},
				StrokeParams:    []any{},
				StrokeStyle:     0, // pen
				StrokeWidth:     3,
			},
			RepaintLatency:    500,
			StyleMap:          map[string]StrokeStyle{},
			SupportNoteConfig: true,
		},
		PaintConfig: PaintConfig{
			AntiAlisingType: 0,
			DitherBitmap:    false,
			Enable:          true,
			FillBrightness:  0,
			FillContrast:    0,
			FillEAC:         false,
			IconBrightness:  0,
			IconContrast:    0,
			IconEAC:         false,
			IconThreshold:   0,
			ImgEAC:          true,
			ImgGamma:        60,
			QuantBits:       3,
			TextBold:        false,
			TextEACType:     0,
		},
		RefreshConfig: RefreshConfig{
			AnimationDuration:  50,
			AntiFlicker:        10,
			Enable:             true,
			GCInterval:         20,
			SupportRegal:       false,
			Turbo:              2,
			UpdateMode:         2,
			UseGCForNewSurface: false,
		},
	}
}
