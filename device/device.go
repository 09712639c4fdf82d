package device

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/qroute-team/qroute-engine/circuit"
	"github.com/qroute-team/qroute-engine/common"
	"github.com/qroute-team/qroute-engine/core"
	"github.com/qroute-team/qroute-engine/topology"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// DeviceSetting names the hardware target: its coupling topology, native
// gate set and flat error rates. The device info spec served to the rest
// of the engine is synthesized from these values.
type DeviceSetting struct {
	DeviceName   string           `toml:"device_name"`
	DeviceType   string           `toml:"device_type"`
	ProviderName string           `toml:"provider_name"`
	MaxQubits    int              `toml:"max_qubits"`
	BasisGates   []string         `toml:"basis_gates"`
	Topology     *TopologySetting `toml:"topology"`
	Errors       *ErrorSetting    `toml:"errors"`
}

type TopologySetting struct {
	Kind string `toml:"kind"`
	Rows int    `toml:"rows"`
	Cols int    `toml:"cols"`
}

type ErrorSetting struct {
	OneQubit float64 `toml:"one_qubit"`
	TwoQubit float64 `toml:"two_qubit"`
	Readout  float64 `toml:"readout"`
}

func NewDeviceSetting() *DeviceSetting {
	return &DeviceSetting{
		DeviceName:   "qroute-line",
		DeviceType:   "superconducting",
		ProviderName: "qroute",
		MaxQubits:    6,
		Topology:     &TopologySetting{Kind: "line"},
		Errors:       &ErrorSetting{OneQubit: 0.001, TwoQubit: 0.01, Readout: 0.02},
	}
}

func LoadDeviceSetting(path string) (*DeviceSetting, error) {
	blob, assetErr := common.ReadFile(path)
	ds := NewDeviceSetting()
	if assetErr != nil {
		zap.L().Info(fmt.Sprintf("Failed to read file:%s Reason:%s", path, assetErr))
		return ds, nil
	}
	if _, err := toml.Decode(blob, ds); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode blob:%s", blob))
		return &DeviceSetting{}, err
	}
	return ds, nil
}

// BuildGraph realizes the coupling graph named by the topology setting.
// For the grid kind the qubit count is rows*cols; every other kind uses
// max_qubits.
func (ds *DeviceSetting) BuildGraph() (*topology.Graph, error) {
	t := ds.Topology
	if t == nil {
		return topology.Line(ds.MaxQubits)
	}
	switch t.Kind {
	case "line", "":
		return topology.Line(ds.MaxQubits)
	case "ring":
		return topology.Ring(ds.MaxQubits)
	case "grid":
		return topology.Grid(t.Rows, t.Cols)
	case "star":
		return topology.Star(ds.MaxQubits)
	case "full":
		return topology.Full(ds.MaxQubits)
	default:
		return nil, fmt.Errorf("unknown topology kind:%s", t.Kind)
	}
}

// Basis resolves the native gate set. Explicit basis_gates win over the
// set implied by the device type.
func (ds *DeviceSetting) Basis() circuit.Basis {
	if len(ds.BasisGates) > 0 {
		return circuit.NewBasis(ds.DeviceName, ds.BasisGates)
	}
	return circuit.BasisByName(ds.DeviceType)
}

func buildSpec(ds *DeviceSetting, g *topology.Graph) *core.DeviceInfoSpec {
	errs := ds.Errors
	if errs == nil {
		errs = NewDeviceSetting().Errors
	}
	spec := &core.DeviceInfoSpec{
		DeviceID:   ds.DeviceName,
		BasisGates: ds.Basis().Gates,
	}
	for q := 0; q < g.NumNodes(); q++ {
		spec.Qubits = append(spec.Qubits, core.Qubit{
			ID:         q,
			PhysicalID: q,
			Position:   core.Position{X: float64(q)},
			Fidelity:   1.0 - errs.OneQubit,
			MeasError: core.MeasError{
				ProbMeas1Prep0:         errs.Readout,
				ProbMeas0Prep1:         errs.Readout,
				ReadoutAssignmentError: errs.Readout,
			},
			QubitLife: core.QubitLife{T1: 35.0, T2: 24.0},
		})
	}
	for _, e := range g.Edges() {
		spec.Couplings = append(spec.Couplings, core.Coupling{
			Control:  e[0],
			Target:   e[1],
			Fidelity: 1.0 - errs.TwoQubit,
		})
	}
	return spec
}

func newDeviceInfo(ds *DeviceSetting) (*core.DeviceInfo, *topology.Graph, error) {
	g, err := ds.BuildGraph()
	if err != nil {
		return nil, nil, err
	}
	spec := buildSpec(ds, g)
	b, err := jsonIter.Marshal(spec)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal device info spec/reason:%s", err))
		return nil, nil, err
	}
	di := &core.DeviceInfo{
		DeviceName:         ds.DeviceName,
		ProviderName:       ds.ProviderName,
		Type:               ds.DeviceType,
		Status:             core.Available,
		MaxQubits:          g.NumNodes(),
		DeviceInfoSpecJson: string(b),
		CalibratedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	return di, g, nil
}

func validateQASM(qasm string, maxQubits int) error {
	if qasm == "" {
		msg := "no input qasm"
		zap.L().Info(msg)
		return fmt.Errorf(msg)
	}
	c, err := circuit.ParseQASM(qasm)
	if err != nil {
		zap.L().Info(err.Error())
		return err
	}
	if err := c.Validate(); err != nil {
		zap.L().Info(err.Error())
		return err
	}
	if c.NumQubits > maxQubits {
		msg := fmt.Sprintf("qubits(%d) is over the limit(%d)", c.NumQubits, maxQubits)
		zap.L().Info(msg)
		return fmt.Errorf(msg)
	}
	return nil
}

const DummyDeviceName = "DummyDevice"
const DummyProviderName = "DummyProvider"
const DummyMaxQubits = 6

// DummyDevice is a six qubit line with the default error rates. It needs
// no setting file, so tests and the dummy-device mode use it.
type DummyDevice struct {
	info *core.DeviceInfo
}

func (d *DummyDevice) Setup(_ *core.Conf) error {
	zap.L().Debug("setting up the dummy device")
	ds := NewDeviceSetting()
	ds.DeviceName = DummyDeviceName
	ds.ProviderName = DummyProviderName
	ds.MaxQubits = DummyMaxQubits
	info, _, err := newDeviceInfo(ds)
	if err != nil {
		return err
	}
	d.info = info
	return nil
}

func (d *DummyDevice) Validate(qasm string) error {
	return validateQASM(qasm, d.info.MaxQubits)
}

func (d *DummyDevice) GetDeviceInfo() *core.DeviceInfo {
	return d.info
}

// ConfiguredDevice realizes the device named by the setting file at
// Conf.DeviceSettingPath. A missing file falls back to the defaults.
type ConfiguredDevice struct {
	setting *DeviceSetting
	graph   *topology.Graph
	info    *core.DeviceInfo
}

func (d *ConfiguredDevice) Setup(conf *core.Conf) error {
	ds, err := LoadDeviceSetting(conf.DeviceSettingPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to load a device setting. Reason:%s", err))
		return err
	}
	info, g, err := newDeviceInfo(ds)
	if err != nil {
		return err
	}
	d.setting = ds
	d.graph = g
	d.info = info
	zap.L().Debug(fmt.Sprintf("device info spec:%s", common.PlainJsonString(info.DeviceInfoSpecJson)))
	return nil
}

func (d *ConfiguredDevice) Validate(qasm string) error {
	return validateQASM(qasm, d.info.MaxQubits)
}

func (d *ConfiguredDevice) GetDeviceInfo() *core.DeviceInfo {
	return d.info
}
