package api

import (
	"net/http"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/prodwatch/prodwatch/internal/metrics"
)

// export returns GET /api/v1/export — the latest sample of every live series
// in the Prometheus text exposition format. Each series becomes one untyped
// family; the latest sample's tags become labels.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	latest := h.mon.Store().Latest()
	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Strings(names)

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)

	for _, name := range names {
		if err := enc.Encode(toFamily(name, latest[name])); err != nil {
			// Client went away mid-write; nothing sensible left to send.
			return
		}
	}
}

// toFamily converts one series' latest sample to an exposition family.
func toFamily(name string, s metrics.Sample) *dto.MetricFamily {
	labels := make([]*dto.LabelPair, 0, len(s.Tags))
	for k, v := range s.Tags {
		labels = append(labels, &dto.LabelPair{
			Name:  proto.String(sanitize(k)),
			Value: proto.String(v),
		})
	}
	sort.Slice(labels, func(i, j int) bool {
		return labels[i].GetName() < labels[j].GetName()
	})

	return &dto.MetricFamily{
		Name: proto.String(sanitize(name)),
		Type: dto.MetricType_UNTYPED.Enum(),
		Metric: []*dto.Metric{{
			Label:       labels,
			Untyped:     &dto.Untyped{Value: proto.Float64(s.Value)},
			TimestampMs: proto.Int64(s.Timestamp.UnixMilli()),
		}},
	}
}

// sanitize maps a metric or label name onto the exposition charset
// [a-zA-Z_:][a-zA-Z0-9_:]*.
func sanitize(name string) string {
	out := []byte(name)
	for i, c := range out {
		ok := c == '_' || c == ':' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9' && i > 0)
		if !ok {
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}
