package dashboard

import (
	"sync"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

// ChartKind names the three dashboard visualizations.
type ChartKind string

const (
	// ChartKindDistribution is the pie of watch models.
	ChartKindDistribution ChartKind = "distribution"
	// ChartKindCategory is the bar chart of requested features.
	ChartKindCategory ChartKind = "category"
	// ChartKindTimeline is the per-day line chart.
	ChartKindTimeline ChartKind = "timeline"
)

const (
	// Mount points are the element ids the page renders a chart into.
	MountWatchChart    = "watchChart"
	MountFeatureChart  = "featureChart"
	MountTimelineChart = "timelineChart"

	chartTypePie  = "pie"
	chartTypeBar  = "bar"
	chartTypeLine = "line"

	accentColor         = "#007AFF"
	timelineLabel       = "Submissions"
	timelineTension     = 0.4
	legendPositionBelow = "bottom"

	scaleAxisX = "x"
	scaleAxisY = "y"
)

var distributionPalette = []string{"#007AFF", "#5856D6", "#FF2D55", "#FF9500"}

// MountPoint returns the element id the chart renders into.
func (kind ChartKind) MountPoint() string {
	switch kind {
	case ChartKindDistribution:
		return MountWatchChart
	case ChartKindCategory:
		return MountFeatureChart
	case ChartKindTimeline:
		return MountTimelineChart
	default:
		return ""
	}
}

// ChartHandle identifies a mounted chart for later updates.
type ChartHandle string

// ChartConfig is serialized as a Chart.js configuration object.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string   `json:"label,omitempty"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor,omitempty"`
	BorderColor     string   `json:"borderColor,omitempty"`
	Tension         float64  `json:"tension,omitempty"`
}

type ChartOptions struct {
	Responsive bool                   `json:"responsive"`
	Plugins    ChartPlugins           `json:"plugins"`
	Scales     map[string]*ChartScale `json:"scales,omitempty"`
}

type ChartPlugins struct {
	Legend ChartLegend `json:"legend"`
}

type ChartLegend struct {
	Display  bool              `json:"display"`
	Position string            `json:"position,omitempty"`
	Labels   ChartLegendLabels `json:"labels"`
}

type ChartLegendLabels struct {
	Color string `json:"color"`
}

type ChartScale struct {
	BeginAtZero bool       `json:"beginAtZero,omitempty"`
	Ticks       ChartTicks `json:"ticks"`
	Grid        ChartGrid  `json:"grid"`
}

type ChartTicks struct {
	Color string `json:"color"`
}

type ChartGrid struct {
	Color string `json:"color"`
}

func (config ChartConfig) clone() ChartConfig {
	cloned := config
	cloned.Data.Labels = append([]string{}, config.Data.Labels...)
	cloned.Data.Datasets = make([]ChartDataset, len(config.Data.Datasets))
	for index, dataset := range config.Data.Datasets {
		dataset.Data = append([]int{}, dataset.Data...)
		dataset.BackgroundColor = append([]string(nil), dataset.BackgroundColor...)
		cloned.Data.Datasets[index] = dataset
	}
	if config.Options.Scales != nil {
		cloned.Options.Scales = make(map[string]*ChartScale, len(config.Options.Scales))
		for axis, scale := range config.Options.Scales {
			scaleCopy := *scale
			cloned.Options.Scales[axis] = &scaleCopy
		}
	}
	return cloned
}

func (config *ChartConfig) applyPalette(palette theme.Palette) {
	config.Options.Plugins.Legend.Labels.Color = palette.TextColor
	for _, scale := range config.Options.Scales {
		scale.Ticks.Color = palette.TextColor
		scale.Grid.Color = palette.GridColor
	}
}

func (config *ChartConfig) setSeries(table FrequencyTable) {
	config.Data.Labels = table.Labels()
	if len(config.Data.Datasets) == 0 {
		config.Data.Datasets = []ChartDataset{{}}
	}
	config.Data.Datasets[0].Data = table.Counts()
}

func axisScales(beginAtZero bool) map[string]*ChartScale {
	return map[string]*ChartScale{
		scaleAxisX: {},
		scaleAxisY: {BeginAtZero: beginAtZero},
	}
}

func newChartConfig(kind ChartKind, palette theme.Palette) ChartConfig {
	var config ChartConfig
	switch kind {
	case ChartKindDistribution:
		config = ChartConfig{
			Type: chartTypePie,
			Data: ChartData{
				Labels:   []string{},
				Datasets: []ChartDataset{{Data: []int{}, BackgroundColor: append([]string{}, distributionPalette...)}},
			},
			Options: ChartOptions{
				Responsive: true,
				Plugins:    ChartPlugins{Legend: ChartLegend{Display: true, Position: legendPositionBelow}},
			},
		}
	case ChartKindCategory:
		config = ChartConfig{
			Type: chartTypeBar,
			Data: ChartData{
				Labels:   []string{},
				Datasets: []ChartDataset{{Data: []int{}, BackgroundColor: []string{accentColor}}},
			},
			Options: ChartOptions{
				Responsive: true,
				Plugins:    ChartPlugins{Legend: ChartLegend{Display: false}},
				Scales:     axisScales(false),
			},
		}
	case ChartKindTimeline:
		config = ChartConfig{
			Type: chartTypeLine,
			Data: ChartData{
				Labels: []string{},
				Datasets: []ChartDataset{{
					Label:       timelineLabel,
					Data:        []int{},
					BorderColor: accentColor,
					Tension:     timelineTension,
				}},
			},
			Options: ChartOptions{
				Responsive: true,
				Plugins:    ChartPlugins{Legend: ChartLegend{Display: false}},
				Scales:     axisScales(true),
			},
		}
	}
	config.applyPalette(palette)
	return config
}

// ChartPresenter mounts and redraws charts.
type ChartPresenter interface {
	MountChart(kind ChartKind, config ChartConfig) ChartHandle
	UpdateChart(handle ChartHandle, config ChartConfig)
}

type mountedChart struct {
	kind   ChartKind
	handle ChartHandle
	config ChartConfig
}

// ChartRenderer owns the three charts of one dashboard page. Charts are mounted
// once; later data and theme changes update them in place.
type ChartRenderer struct {
	mutex     sync.Mutex
	presenter ChartPresenter
	charts    []*mountedChart
}

func NewChartRenderer(presenter ChartPresenter) *ChartRenderer {
	return &ChartRenderer{presenter: presenter}
}

// Init mounts the empty charts styled for the theme. Subsequent calls are no-ops.
func (renderer *ChartRenderer) Init(activeTheme theme.Theme) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	if renderer.charts != nil {
		return
	}
	palette := theme.PaletteFor(activeTheme)
	for _, kind := range []ChartKind{ChartKindDistribution, ChartKindCategory, ChartKindTimeline} {
		chart := &mountedChart{kind: kind, config: newChartConfig(kind, palette)}
		if renderer.presenter != nil {
			chart.handle = renderer.presenter.MountChart(kind, chart.config.clone())
		}
		renderer.charts = append(renderer.charts, chart)
	}
}

// Mounted reports whether Init has run.
func (renderer *ChartRenderer) Mounted() bool {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	return renderer.charts != nil
}

// Update replaces every chart's series with the snapshot's tables.
func (renderer *ChartRenderer) Update(snapshot Snapshot) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	for _, chart := range renderer.charts {
		switch chart.kind {
		case ChartKindDistribution:
			chart.config.setSeries(snapshot.ByModel)
		case ChartKindCategory:
			chart.config.setSeries(snapshot.ByFeature)
		case ChartKindTimeline:
			chart.config.setSeries(snapshot.ByDay)
		}
		renderer.redraw(chart)
	}
}

// Retheme restyles axis ticks, grid lines and legend text on every mounted chart.
func (renderer *ChartRenderer) Retheme(activeTheme theme.Theme) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	palette := theme.PaletteFor(activeTheme)
	for _, chart := range renderer.charts {
		chart.config.applyPalette(palette)
		renderer.redraw(chart)
	}
}

// Config returns a copy of the current configuration of the chart of the given kind.
func (renderer *ChartRenderer) Config(kind ChartKind) (ChartConfig, bool) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	for _, chart := range renderer.charts {
		if chart.kind == kind {
			return chart.config.clone(), true
		}
	}
	return ChartConfig{}, false
}

func (renderer *ChartRenderer) redraw(chart *mountedChart) {
	if renderer.presenter == nil {
		return
	}
	renderer.presenter.UpdateChart(chart.handle, chart.config.clone())
}
