package core

import (
	"fmt"

	"go.uber.org/dig"
)

const MockMaxQubits int = 10
const validateErrorMessage string = "line 3: unsupported statement \"dummy_string\""

type UnimplementedJob struct {
	jobData    *JobData
	jobContext *JobContext
}

func (j *UnimplementedJob) New(jd *JobData, jc *JobContext) Job {
	return &UnimplementedJob{
		jobData:    jd,
		jobContext: jc,
	}
}

func (j *UnimplementedJob) PreProcess() {
	return
}

func (j *UnimplementedJob) Process() {
	return
}

func (j *UnimplementedJob) PostProcess() {
	return
}

func (j *UnimplementedJob) IsFinished() bool {
	return j.JobData().Status == SUCCEEDED || j.JobData().Status == FAILED
}

func (j *UnimplementedJob) JobData() *JobData {
	return j.jobData
}

func (j *UnimplementedJob) JobType() string {
	return j.jobData.JobType
}

func (j *UnimplementedJob) JobContext() *JobContext {
	return j.jobContext
}

func (j *UnimplementedJob) Clone() Job {
	cloned := &UnimplementedJob{
		jobData:    j.jobData.Clone(),
		jobContext: j.jobContext,
	}
	return cloned
}

type UnimplementedDevice struct{}

func (u *UnimplementedDevice) Setup(*Conf) error {
	return nil
}

func (u *UnimplementedDevice) Validate(string) error {
	return nil
}

func (u *UnimplementedDevice) GetDeviceInfo() *DeviceInfo {
	return &DeviceInfo{
		MaxQubits:  MockMaxQubits,
		DeviceName: "unimplementedDevice",
		DeviceInfoSpecJson: `
			{
			"device_id": "DummyDevice",
			"qubits":
			[{
			"id": 0, "qubit_lifetime": {"t1": 36.9, "t2": 23.8}, "fidelity": 0.99, "meas_error": {"prob_meas0_prep1": 0.01903, "prob_meas1_prep0": 0.02789}
			},
			{
			"id": 1, "qubit_lifetime": {"t1": 35.85, "t2": 24.8}, "fidelity": 0.98, "meas_error": {"prob_meas0_prep1": 0.00947, "prob_meas1_prep0": 0.01556}
			},
			{
			"id": 2, "qubit_lifetime": {"t1": 35.85, "t2": 24.8}, "fidelity": 0.98, "meas_error": {"prob_meas0_prep1": 0.00947, "prob_meas1_prep0": 0.01556}
			},
			{
			"id": 3, "qubit_lifetime": {"t1": 35.85, "t2": 24.8}, "fidelity": 0.98, "meas_error": {"prob_meas0_prep1": 0.00947, "prob_meas1_prep0": 0.01556}
			}],
			"couplings":
			[{"control": 0, "target": 1, "fidelity": 0.97},
			{"control": 1, "target": 2, "fidelity": 0.97},
			{"control": 2, "target": 3, "fidelity": 0.97}]
			}`,
	}
}

type validateErrorDeviceForTest struct {
	UnimplementedDevice
}

func (validateErrorDeviceForTest) Validate(string) error {
	return fmt.Errorf(validateErrorMessage)
}

type unimplementedDB struct {
	innerJobIDSet map[string]struct{}
}

func (u *unimplementedDB) Setup(DBChan, *Conf) error {
	u.innerJobIDSet = make(map[string]struct{})
	return nil
}
func (u *unimplementedDB) Insert(Job) error { return nil }
func (u *unimplementedDB) Get(JobID string) (Job, error) {
	return &CompileJob{}, nil
}
func (u *unimplementedDB) Update(Job) error    { return nil }
func (u *unimplementedDB) Delete(string) error { return nil }
func (u *unimplementedDB) AddToInnerJobIDSet(jobID string) {
	u.innerJobIDSet[jobID] = struct{}{}
}
func (u *unimplementedDB) RemoveFromInnerJobIDSet(jobID string) {
	delete(u.innerJobIDSet, jobID)
}
func (u *unimplementedDB) ExistInInnerJobIDSet(jobID string) bool {
	_, ok := u.innerJobIDSet[jobID]
	return ok
}

type successDBForTest struct {
	unimplementedDB
}

func (successDBForTest) Get(jobID string) (Job, error) {
	return &CompileJob{
		jobData: &JobData{
			ID:     jobID,
			Status: RUNNING,
		},
	}, nil
}

type notFindDBForTest struct {
	unimplementedDB
}

func (notFindDBForTest) Get(jobID string) (Job, error) {
	return &CompileJob{}, fmt.Errorf("failed to find %s", jobID)
}

type successTranspilerForTest struct{}

func (successTranspilerForTest) IsAcceptableTranspilerLib(string) bool {
	return true
}

func (successTranspilerForTest) Setup(*Conf) error   { return nil }
func (successTranspilerForTest) GetHealth() error    { return nil }
func (successTranspilerForTest) Transpile(Job) error { return nil }
func (successTranspilerForTest) TearDown()           {}

type unimplementedScheduler struct{}

func (u *unimplementedScheduler) Setup(*Conf) error           { return nil }
func (u *unimplementedScheduler) Start() error                { return nil }
func (u *unimplementedScheduler) HandleJob(_ Job)             { return }
func (u *unimplementedScheduler) GetCurrentQueueSize() int    { return 0 }
func (u *unimplementedScheduler) IsOverRefillThreshold() bool { return false }

func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() DeviceManager { return &UnimplementedDevice{} })
	c.Provide(func() Transpiler { return &successTranspilerForTest{} })
	c.Provide(func() DBManager {
		db := &successDBForTest{}
		db.Setup(nil, &Conf{})
		return db
	})
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithValidateErrorContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() DeviceManager { return &validateErrorDeviceForTest{} })
	c.Provide(func() Transpiler { return &successTranspilerForTest{} })
	c.Provide(func() DBManager {
		db := &successDBForTest{}
		db.Setup(nil, &Conf{})
		return db
	})
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithDBContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() DeviceManager { return &UnimplementedDevice{} })
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() Transpiler { return &successTranspilerForTest{} })
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithScheduler(sc Scheduler) *SystemComponents {
	c := dig.New()
	c.Provide(func() DeviceManager { return &UnimplementedDevice{} })
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() Transpiler { return &successTranspilerForTest{} })
	c.Provide(func() Scheduler { return sc })
	s := NewSystemComponents(c)
	s.Setup(&Conf{QueueMaxSize: 1000})
	return s
}
