package config

type WorkerKeyStruct struct {
	AdmissionNoticesQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AdmissionNoticesQueue: "admission_notices_queue",
}
