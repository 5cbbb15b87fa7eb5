package config

type WorkerKeyStruct struct {
	PersistGradeImportsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistGradeImportsQueue: "persist_grade_imports_queue",
}
