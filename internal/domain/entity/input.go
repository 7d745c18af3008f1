package entity

// InputKind classifies what the user pointed the pipeline at.
type InputKind string

const (
	InputVideo          InputKind = "video"
	InputImageDirectory InputKind = "image_directory"
)
