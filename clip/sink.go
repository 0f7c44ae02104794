package clip

// Sink receives sampled target output. A host implements it to write values
// into whatever property the target drives. When several clips drive the same
// target in one tick, each write carries that clip's weight and the sink owns
// the composition.
type Sink interface {
	WritePose(ref Ref, position [3]float32, rotation [4]float32, weight float32)
	WriteScalar(ref Ref, value, weight float32)
	FireTrigger(ref Ref, name string, weight float32)
}

// SinkFuncs adapts plain functions to Sink. Nil fields drop the write.
type SinkFuncs struct {
	Pose    func(ref Ref, position [3]float32, rotation [4]float32, weight float32)
	Scalar  func(ref Ref, value, weight float32)
	Trigger func(ref Ref, name string, weight float32)
}

func (s SinkFuncs) WritePose(ref Ref, position [3]float32, rotation [4]float32, weight float32) {
	if s.Pose != nil {
		s.Pose(ref, position, rotation, weight)
	}
}

func (s SinkFuncs) WriteScalar(ref Ref, value, weight float32) {
	if s.Scalar != nil {
		s.Scalar(ref, value, weight)
	}
}

func (s SinkFuncs) FireTrigger(ref Ref, name string, weight float32) {
	if s.Trigger != nil {
		s.Trigger(ref, name, weight)
	}
}
