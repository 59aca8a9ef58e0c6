package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/legendpack/pkg/cache"
	"github.com/matzehuels/legendpack/pkg/errors"
	"github.com/matzehuels/legendpack/pkg/legend"
	"github.com/matzehuels/legendpack/pkg/observability"
)

func stubLayers(heights ...float64) []*legend.Block {
	out := make([]*legend.Block, len(heights))
	for i, h := range heights {
		out[i] = &legend.Block{Kind: legend.KindLayer, Height: h}
	}
	return out
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg", "png"}, false},
		{[]string{"json", "dot", "txt"}, false},
		{nil, false},
		{[]string{"pdf"}, true},
		{[]string{"SVG"}, true},
		{[]string{""}, true},
	}
	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%q) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("ValidateFormats(%q) code = %s", tt.formats, errors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" SVG, json,,txt ")
	want := []string{"svg", "json", "txt"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ParseFormats = %v, want %v", got, want)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.MaxSections != DefaultMaxSections {
		t.Errorf("MaxSections = %d", o.MaxSections)
	}
	if o.Strategy != "auto" {
		t.Errorf("Strategy = %q", o.Strategy)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative sections", Options{MaxSections: -1}, errors.ErrCodeInvalidArgument},
		{"negative bound", Options{MaxSectionHeight: -5}, errors.ErrCodeInvalidArgument},
		{"improvement too big", Options{MinImprovement: 1}, errors.ErrCodeInvalidArgument},
		{"unknown strategy", Options{Strategy: "random"}, errors.ErrCodeInvalidArgument},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLegendKeyOptsDistinguishOptions(t *testing.T) {
	a := Options{MaxSections: 2}
	b := Options{MaxSections: 2, MaxSectionHeight: 100}
	k := cache.NewDefaultKeyer()
	if k.LegendKey("h", a.LegendKeyOpts()) == k.LegendKey("h", b.LegendKeyOpts()) {
		t.Error("height bound not part of the key")
	}
}

func TestDocHashIgnoresAnnotations(t *testing.T) {
	a := stubLayers(4, 2, 2)
	b := stubLayers(4, 2, 2)
	b[1].SplitBefore = true
	b[2].Y = 6
	ha, err := DocHash(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := DocHash(b)
	if ha != hb {
		t.Error("annotations changed the document hash")
	}
	hc, _ := DocHash(stubLayers(4, 2, 3))
	if ha == hc {
		t.Error("different heights share a hash")
	}
	if !b[1].SplitBefore {
		t.Error("DocHash modified its input")
	}
}

func TestRunnerPackUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	ctx := context.Background()
	opts := Options{MaxSections: 2}

	first := stubLayers(4, 2, 2)
	res, hit, err := r.PackWithCacheInfo(ctx, first, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first pack hit the cache")
	}
	if res.SectionsUsed != 2 || !first[1].SplitBefore {
		t.Fatalf("first pack: sections %d, flags %v", res.SectionsUsed, legend.SplitFlags(first))
	}

	second := stubLayers(4, 2, 2)
	res2, hit, err := r.PackWithCacheInfo(ctx, second, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second pack missed the cache")
	}
	if got := legend.SplitFlags(second); got[0] || !got[1] || got[2] {
		t.Errorf("cached flags not applied: %v", got)
	}
	if second[2].Y != 6 {
		t.Errorf("cached Y not applied: %v", second[2].Y)
	}
	if res2.SectionsUsed != 2 || res2.Strategy != legend.StrategyOptimal || res2.Layers[0] != second[0] {
		t.Errorf("cached result = %+v", res2)
	}

	opts.Refresh = true
	if _, hit, _ := r.PackWithCacheInfo(ctx, stubLayers(4, 2, 2), opts); hit {
		t.Error("Refresh still hit the cache")
	}
}

func TestRunnerPackRejectsInvalidInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Pack(context.Background(), []*legend.Block{nil}, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
	_, err = r.Pack(context.Background(), stubLayers(1), Options{MaxSections: -2})
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("err = %v", err)
	}
}

func TestExecuteTextAndDOT(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, log.New(&bytes.Buffer{}))
	res, err := r.Execute(context.Background(), stubLayers(4, 2, 2, 4), Options{
		MaxSections: 3,
		Formats:     []string{FormatJSON, FormatTXT, FormatDOT},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Legend.SectionsUsed != 3 {
		t.Errorf("SectionsUsed = %d", res.Legend.SectionsUsed)
	}
	if res.DocHash == "" {
		t.Error("DocHash empty")
	}

	var doc struct {
		SectionsUsed int `json:"sectionsUsed"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil || doc.SectionsUsed != 3 {
		t.Errorf("json artifact: %v, %+v", err, doc)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatTXT]), "3 sections (optimal)") {
		t.Errorf("txt artifact:\n%s", res.Artifacts[FormatTXT])
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "subgraph cluster_2") {
		t.Errorf("dot artifact:\n%s", res.Artifacts[FormatDOT])
	}
}

func TestRenderCachesArtifacts(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	ctx := context.Background()
	res, err := r.Pack(ctx, stubLayers(4, 2, 2), Options{MaxSections: 2})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Formats: []string{FormatTXT}}
	if _, hit, err := r.RenderWithCacheInfo(ctx, res, opts); err != nil || hit {
		t.Fatalf("first render: hit %v, err %v", hit, err)
	}
	a, hit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil || !hit {
		t.Fatalf("second render: hit %v, err %v", hit, err)
	}
	if !strings.Contains(string(a[FormatTXT]), "2 sections") {
		t.Errorf("cached artifact = %q", a[FormatTXT])
	}
}

func TestRunnerEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	rec := &recordingHooks{}
	observability.SetPackHooks(rec)
	observability.SetCacheHooks(rec)

	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	if _, err := r.Execute(context.Background(), stubLayers(3, 3), Options{MaxSections: 2, Formats: []string{FormatTXT}}); err != nil {
		t.Fatal(err)
	}
	want := []string{"pack-start", "miss:legend", "pack-done:optimal:2", "miss:artifact", "render:txt"}
	if strings.Join(rec.events, " ") != strings.Join(want, " ") {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

type recordingHooks struct {
	observability.NoopPackHooks
	observability.NoopCacheHooks
	events []string
}

func (h *recordingHooks) OnPackStart(context.Context, int, int) {
	h.events = append(h.events, "pack-start")
}

func (h *recordingHooks) OnPackComplete(_ context.Context, strategy string, n int, _ time.Duration, _ error) {
	h.events = append(h.events, "pack-done:"+strategy+":"+string(rune('0'+n)))
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	h.events = append(h.events, "render:"+format)
}

func (h *recordingHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.events = append(h.events, "miss:"+keyType)
}
