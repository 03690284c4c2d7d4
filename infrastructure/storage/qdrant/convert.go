package qdrant

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/felixgeelhaar/agent-memory/domain/vector"
)

func toDistance(d vector.Distance) qdrant.Distance {
	switch d {
	case vector.DistanceEuclidean:
		return qdrant.Distance_Euclid
	case vector.DistanceDot:
		return qdrant.Distance_Dot
	default:
		return qdrant.Distance_Cosine
	}
}

func toPointStruct(p vector.Point) (*qdrant.PointStruct, error) {
	payload, err := toPayload(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("qdrant: point %s: %w", p.ID, err)
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewID(p.ID),
		Vectors: qdrant.NewVectorsDense(p.Vector),
		Payload: payload,
	}, nil
}

// toPayload converts a payload to protobuf values. Types the client does
// not accept directly are routed through JSON first.
func toPayload(payload map[string]any) (map[string]*qdrant.Value, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	out, err := qdrant.TryValueMap(payload)
	if err == nil {
		return out, nil
	}

	data, jerr := json.Marshal(payload)
	if jerr != nil {
		return nil, err
	}
	var generic map[string]any
	if jerr := json.Unmarshal(data, &generic); jerr != nil {
		return nil, err
	}
	return qdrant.TryValueMap(generic)
}

func toFilter(f *vector.Filter) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}

	must := make([]*qdrant.Condition, 0, len(f.Must))
	for _, c := range f.Must {
		switch {
		case c.HasID != nil:
			ids := make([]*qdrant.PointId, 0, len(c.HasID))
			for _, id := range c.HasID {
				ids = append(ids, qdrant.NewID(id))
			}
			must = append(must, qdrant.NewHasID(ids...))
		case c.Match != nil:
			must = append(must, qdrant.NewMatch(c.Key, c.Match.Keyword))
		case c.Range != nil:
			must = append(must, qdrant.NewRange(c.Key, &qdrant.Range{
				Gte: c.Range.Gte,
				Lte: c.Range.Lte,
			}))
		}
	}
	return &qdrant.Filter{Must: must}
}

func fromRetrieved(points []*qdrant.RetrievedPoint) []vector.Point {
	out := make([]vector.Point, 0, len(points))
	for _, p := range points {
		out = append(out, fromPoint(p.GetId(), p.GetPayload(), p.GetVectors()))
	}
	return out
}

func fromPoint(id *qdrant.PointId, payload map[string]*qdrant.Value, vectors *qdrant.VectorsOutput) vector.Point {
	p := vector.Point{ID: pointID(id)}
	if len(payload) > 0 {
		p.Payload = make(map[string]any, len(payload))
		for k, v := range payload {
			p.Payload[k] = fromValue(v)
		}
	}
	if data := denseVector(vectors); len(data) > 0 {
		p.Vector = data
	}
	return p
}

func pointID(id *qdrant.PointId) string {
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func denseVector(v *qdrant.VectorsOutput) []float32 {
	out := v.GetVector()
	if out == nil {
		return nil
	}
	if dense := out.GetDense(); dense != nil {
		return dense.GetData()
	}
	return out.GetData() //nolint:staticcheck // older servers only fill the flat field
}

func fromValue(v *qdrant.Value) any {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	case *qdrant.Value_StructValue:
		fields := k.StructValue.GetFields()
		m := make(map[string]any, len(fields))
		for name, fv := range fields {
			m[name] = fromValue(fv)
		}
		return m
	case *qdrant.Value_ListValue:
		values := k.ListValue.GetValues()
		list := make([]any, 0, len(values))
		for _, lv := range values {
			list = append(list, fromValue(lv))
		}
		return list
	default:
		return nil
	}
}
