package core

import (
	"encoding/json"
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var systemComponents *SystemComponents

type DBChan chan Job

type Channels struct {
	DBChan
	// when more channel is needed, add here
	// would use map[string]chan Job
}

func NewChannels() *Channels {
	return &Channels{
		DBChan: make(DBChan),
	}
}

func (c *Channels) Close() {
	close(c.DBChan)
}

func (c *Channels) Check() error {
	if c.DBChan == nil {
		return fmt.Errorf("DBChan is nil")
	}
	return nil
}

type DeviceInfo struct {
	DeviceName         string       `json:"device_name"`
	ProviderName       string       `json:"provider_name"`
	Type               string       `json:"type"`
	Status             DeviceStatus `json:"status"`
	MaxQubits          int          `json:"max_qubits"`
	DeviceInfoSpecJson string       `json:"device_info"` // memo: the same as "DeviceInfo"
	CalibratedAt       string       `json:"calibrated_at"`
}

type DeviceInfoSpec struct {
	DeviceID   string     `json:"device_id"`
	Qubits     []Qubit    `json:"qubits"`
	Couplings  []Coupling `json:"couplings"`
	BasisGates []string   `json:"basis_gates,omitempty"`
}

type Qubit struct {
	ID         int       `json:"id"`
	PhysicalID int       `json:"physical_id"`
	Position   Position  `json:"position"`
	Fidelity   float64   `json:"fidelity"`
	MeasError  MeasError `json:"meas_error"`
	QubitLife  QubitLife `json:"qubit_lifetime"`
	GateDur    GateDur   `json:"gate_duration"`
}

// Coupling is a directed two-qubit link of the device topology.
type Coupling struct {
	Control  int     `json:"control"`
	Target   int     `json:"target"`
	Fidelity float64 `json:"fidelity"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type MeasError struct {
	ProbMeas1Prep0         float64 `json:"prob_meas1_prep0"`
	ProbMeas0Prep1         float64 `json:"prob_meas0_prep1"`
	ReadoutAssignmentError float64 `json:"readout_assignment_error"`
}

type QubitLife struct {
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
}

type GateDur struct {
	RZ float64 `json:"rz"`
	SX float64 `json:"sx"`
	X  float64 `json:"x"`
}

type DeviceStatus int

const (
	Available DeviceStatus = iota
	Unavailable
	QueuePaused
)

func (ds DeviceStatus) String() string {
	switch ds {
	case Available:
		return "Available"
	case Unavailable:
		return "Unavailable"
	case QueuePaused:
		return "QueuePaused"
	default:
		return "Unknown"
	}
}

type DeviceManager interface {
	Setup(*Conf) error
	Validate(qasm string) error
	GetDeviceInfo() *DeviceInfo
}

func DEFAULT_TRANSPILER_CONFIG() *TranspilerConfig {
	type DefaultTranspilerOptions struct {
		OptimizationLevel int `json:"optimization_level"`
	}
	dtp := DefaultTranspilerOptions{
		OptimizationLevel: 2,
	}
	dtpByte, err := json.Marshal(dtp)
	if err != nil {
		panic(err)
	}
	str := "qroute"

	return &TranspilerConfig{
		TranspilerLib:     &str,
		TranspilerOptions: dtpByte,
		UseDefault:        true,
	}
}

type Transpiler interface {
	IsAcceptableTranspilerLib(string) bool
	Setup(*Conf) error
	GetHealth() error
	Transpile(Job) error
	TearDown()
}

type Scheduler interface {
	Setup(*Conf) error
	Start() error
	HandleJob(Job)
	// Queue Data Access
	GetCurrentQueueSize() int
	IsOverRefillThreshold() bool
}

type DBManager interface {
	Setup(DBChan, *Conf) error
	// TODO: make Start() for consistency
	Insert(Job) error
	Get(string) (Job, error)
	Update(Job) error
	Delete(string) error

	AddToInnerJobIDSet(string)
	RemoveFromInnerJobIDSet(string)
	ExistInInnerJobIDSet(string) bool
}

type SystemComponents struct {
	*dig.Container
	*Channels
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		con,
		NewChannels(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	dbChan := s.DBChan

	zap.L().Debug("Setting up transpiler")
	var err error
	err = s.Invoke(
		func(t Transpiler) error {
			return t.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up scheduler")
	err = s.Invoke(
		func(s Scheduler) error {
			return s.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up DB")
	err = s.Invoke(
		func(d DBManager) error {
			return d.Setup(dbChan, conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up device")
	err = s.Invoke(func(d DeviceManager) error {
		return d.Setup(conf)
	})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() {
	_ = s.Invoke(
		func(t Transpiler) {
			t.TearDown()
		})
	s.Channels.Close()
}

func (s *SystemComponents) StartContainer() error {
	return s.Container.Invoke(
		func(s Scheduler) error {
			return s.Start()
		})
}

func (s *SystemComponents) GetDeviceInfo() *DeviceInfo {
	var deviceInfo *DeviceInfo
	s.Invoke(
		func(d DeviceManager) error {
			deviceInfo = d.GetDeviceInfo()
			return nil
		})
	return deviceInfo
}

func (s *SystemComponents) GetCurrentQueueSize() int {
	var size int
	s.Invoke(
		func(sc Scheduler) {
			size = sc.GetCurrentQueueSize()
		})
	return size
}

func (s *SystemComponents) IsQueueOverRefillThreshold() bool {
	var over bool
	s.Invoke(
		func(sc Scheduler) {
			over = sc.IsOverRefillThreshold()
		})
	return over
}
