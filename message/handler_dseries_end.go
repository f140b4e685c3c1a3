package message

import (
	"fmt"

	"github.com/whitaker-io/data"
)

// dseriesEndHandler implements dseries_end-1.0, the end-of-series
// marker. It carries no data and no frame index.
type dseriesEndHandler struct{}

func (dseriesEndHandler) Header(m *Message) data.Data { return m.frame.Header }

func (dseriesEndHandler) FrameIndex(m *Message) int { return -1 }

func (dseriesEndHandler) Data(m *Message) (interface{}, error) { return nil, nil }

func (dseriesEndHandler) DataLength(m *Message) (int, error) { return 0, nil }

func (dseriesEndHandler) Shape(m *Message) ([]int, error) {
	return nil, fmt.Errorf("dseries_end-1.0: no shape in an end-of-series marker")
}

func (dseriesEndHandler) Dtype(m *Message) (string, error) {
	return "", fmt.Errorf("dseries_end-1.0: no dtype in an end-of-series marker")
}
