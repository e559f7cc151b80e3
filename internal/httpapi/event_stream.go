package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/dashboard"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

const (
	streamEventText        = "text"
	streamEventChartMount  = "chart_mount"
	streamEventChartUpdate = "chart_update"
	streamEventTheme       = "theme"

	streamEventBufferLength = 64

	errorValueStreamUnavailable = "stream_unavailable"
)

var errStreamNotFlushable = errors.New("httpapi: response writer does not support flushing")

type streamEvent struct {
	name    string
	payload any
}

type textEventPayload struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type chartMountEventPayload struct {
	Handle dashboard.ChartHandle `json:"handle"`
	Kind   dashboard.ChartKind   `json:"kind"`
	Config dashboard.ChartConfig `json:"config"`
}

type chartUpdateEventPayload struct {
	Handle dashboard.ChartHandle `json:"handle"`
	Config dashboard.ChartConfig `json:"config"`
}

type themeEventPayload struct {
	Theme theme.Theme `json:"theme"`
	Icon  string      `json:"icon"`
}

// streamPresenter queues presentation calls made by a live page so the
// connection goroutine can write them out in order.
type streamPresenter struct {
	events    chan streamEvent
	done      chan struct{}
	closeOnce sync.Once
}

func newStreamPresenter() *streamPresenter {
	return &streamPresenter{
		events: make(chan streamEvent, streamEventBufferLength),
		done:   make(chan struct{}),
	}
}

func (presenter *streamPresenter) SetText(fieldID string, value string) {
	presenter.publish(streamEventText, textEventPayload{Field: fieldID, Value: value})
}

func (presenter *streamPresenter) MountChart(kind dashboard.ChartKind, config dashboard.ChartConfig) dashboard.ChartHandle {
	handle := dashboard.ChartHandle(kind.MountPoint())
	presenter.publish(streamEventChartMount, chartMountEventPayload{Handle: handle, Kind: kind, Config: config})
	return handle
}

func (presenter *streamPresenter) UpdateChart(handle dashboard.ChartHandle, config dashboard.ChartConfig) {
	presenter.publish(streamEventChartUpdate, chartUpdateEventPayload{Handle: handle, Config: config})
}

func (presenter *streamPresenter) ApplyTheme(activeTheme theme.Theme, icon string) {
	presenter.publish(streamEventTheme, themeEventPayload{Theme: activeTheme, Icon: icon})
}

func (presenter *streamPresenter) Events() <-chan streamEvent {
	return presenter.events
}

// Close releases publishers blocked on a connection that is going away.
func (presenter *streamPresenter) Close() {
	presenter.closeOnce.Do(func() {
		close(presenter.done)
	})
}

func (presenter *streamPresenter) publish(name string, payload any) {
	select {
	case <-presenter.done:
		return
	default:
	}
	select {
	case presenter.events <- streamEvent{name: name, payload: payload}:
	case <-presenter.done:
	}
}

type eventStreamWriter struct {
	writer  gin.ResponseWriter
	flusher http.Flusher
}

func openEventStream(ginContext *gin.Context) (*eventStreamWriter, error) {
	flusher, flushable := ginContext.Writer.(http.Flusher)
	if !flushable {
		return nil, errStreamNotFlushable
	}

	ginContext.Header("Content-Type", "text/event-stream")
	ginContext.Header("Cache-Control", "no-cache")
	ginContext.Header("Connection", "keep-alive")
	ginContext.Writer.WriteHeaderNow()
	flusher.Flush()

	return &eventStreamWriter{writer: ginContext.Writer, flusher: flusher}, nil
}

func (stream *eventStreamWriter) Send(event streamEvent) error {
	serializedPayload, marshalErr := json.Marshal(event.payload)
	if marshalErr != nil {
		return marshalErr
	}
	var buffer bytes.Buffer
	buffer.WriteString("event: ")
	buffer.WriteString(event.name)
	buffer.WriteString("\ndata: ")
	buffer.Write(serializedPayload)
	buffer.WriteString("\n\n")
	if _, writeErr := stream.writer.Write(buffer.Bytes()); writeErr != nil {
		return writeErr
	}
	stream.flusher.Flush()
	return nil
}
