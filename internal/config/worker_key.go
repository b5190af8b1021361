package config

type WorkerKeyStruct struct {
	PersistAttemptsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAttemptsQueue: "persist_assessment_attempts_queue",
}
