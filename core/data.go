package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

type Status int               // Status of the job as seen by submitters, which is coarser than the scheduler stages.
type StatsRaw json.RawMessage // compile metrics as raw JSON
type PhysicalVirtualMapping map[uint32]uint32
type VirtualPhysicalMappingRaw json.RawMessage
type VirtualPhysicalMappingMap map[uint32]uint32

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

func (s StatsRaw) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

func (s *StatsRaw) UnmarshalJSON(data []byte) error {
	*s = append((*s)[0:0], data...)
	return nil
}

func ToStatus(s string) (Status, error) {
	switch s {
	case "submitted":
		return SUBMITTED, nil
	case "ready":
		return READY, nil
	case "running":
		return RUNNING, nil
	case "succeeded":
		return SUCCEEDED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", s)
	}
}

func (p PhysicalVirtualMapping) String() string {
	st, err := jsonIter.Marshal(p)
	if err != nil {
		zap.L().Error("Failed to marshal core.PhysicalVirtualMapping")
		return ""
	}
	return string(st)
}

func (v VirtualPhysicalMappingRaw) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

func (v *VirtualPhysicalMappingRaw) UnmarshalJSON(data []byte) error {
	*v = append((*v)[0:0], data...)
	return nil
}

func (v VirtualPhysicalMappingRaw) String() string {
	st, err := jsonIter.Marshal(v)
	if err != nil {
		zap.L().Error("Failed to marshal core.VirtualPhysicalMapping")
		return ""
	}
	return string(st)
}

func (v VirtualPhysicalMappingRaw) ToMap() (VirtualPhysicalMappingMap, error) {
	// Since JSON object keys are always strings, unmarshaling directly into a map[uint32]uint32
	// will result in an error. Therefore, we first unmarshal into a map[string]uint32,
	// and then convert it to a map[uint32]uint32.
	var temp map[string]uint32
	if err := json.Unmarshal(v, &temp); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal VirtualPhysicalMappingRaw:%v/reason:%s",
			v, err))
	}

	result := make(map[uint32]uint32)
	for k, v := range temp {
		key, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to convert key:%s/reason:%s", k, err))
			return nil, err
		}
		result[uint32(key)] = v
	}
	return result, nil
}

func (v VirtualPhysicalMappingMap) ToRaw() (VirtualPhysicalMappingRaw, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

const (
	SUBMITTED Status = iota // Accepted but not handed to the scheduler yet.
	READY                   // Waiting for a compile worker. All the jobs in the engine are in this status at first.
	RUNNING                 // Being compiled by a worker.
	SUCCEEDED               // Finished successfully.
	FAILED                  // Finished with failure.
	CANCELLED               // Finished with cancellation.
)

func (s Status) String() string {
	switch s {
	case SUBMITTED:
		return "submitted"
	case READY:
		return "ready"
	case RUNNING:
		return "running"
	case SUCCEEDED:
		return "succeeded"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

type Result struct {
	TranspilerInfo *TranspilerInfo `json:"transpiler_info"`
	Comparison     *Comparison     `json:"comparison"`
	Message        string          `json:"message"`
	ExecutionTime  time.Duration   `json:"execution_time"`
}

type TranspilerInfo struct {
	StatsRaw                  StatsRaw                  `json:"stats"`
	PhysicalVirtualMapping    PhysicalVirtualMapping    `json:"physical_virtual_mapping"`
	VirtualPhysicalMappingRaw VirtualPhysicalMappingRaw `json:"virtual_physical_mapping"`
	VirtualPhysicalMappingMap VirtualPhysicalMappingMap `json:"-"` // TODO unify with VirtualPhysicalMappingRaw
}

// Comparison reports a compilation against the device coupling map next to
// the same circuit compiled for an ideal all-to-all device.
type Comparison struct {
	DeviceStats    StatsRaw `json:"device_stats"`
	ReferenceStats StatsRaw `json:"reference_stats"`
	SwapOverhead   int      `json:"swap_overhead"`
	DepthRatio     float64  `json:"depth_ratio"`
}

type JobData struct {
	ID             string
	Status         Status
	Transpiler     *TranspilerConfig
	QASM           string
	TranspiledQASM string
	Result         *Result
	JobType        string
	Created        strfmt.DateTime
	Ended          strfmt.DateTime
}

func (jd *JobData) Clone() *JobData {
	c := deepcopy.Copy(jd).(*JobData)
	c.Created = *jd.Created.DeepCopy()
	c.Ended = *jd.Ended.DeepCopy()
	return c
}

func (jd *JobData) NeedTranspiling() bool {
	return jd.Transpiler.TranspilerLib != nil
}

func NewResult() *Result {
	ti := &TranspilerInfo{}
	ti.StatsRaw = StatsRaw(`""`)
	ti.PhysicalVirtualMapping = make(PhysicalVirtualMapping)
	ti.VirtualPhysicalMappingRaw = VirtualPhysicalMappingRaw(`{}`)
	return &Result{
		TranspilerInfo: ti,
	}
}

func NewJobData() *JobData {
	return &JobData{
		Result:  NewResult(),
		Created: strfmt.DateTime(time.Now()),
	}
}

func (r *Result) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.Result")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

// TODO resolve the confusion between TranspilerConfig and TranspilerInfo
type TranspilerConfig struct {
	TranspilerLib     *string         `json:"transpiler_lib"` //(=nil) null means no transpiler
	TranspilerOptions json.RawMessage `json:"transpiler_options"`
	UseDefault        bool            `json:"-"`
}

func (c TranspilerConfig) NeedTranspiling() bool {
	return c.TranspilerLib != nil
}

func UnmarshalToTranspilerConfig(transpilerInfo string) TranspilerConfig {
	var c TranspilerConfig
	err := jsonIter.Unmarshal([]byte(transpilerInfo), &c)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal transpiler config from :%s/reason:%s",
			transpilerInfo, err))
	}
	return c
}
