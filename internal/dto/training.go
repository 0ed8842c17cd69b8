package dto

// TrainRequest enqueues a policy training job.
type TrainRequest struct {
	Budget    int `json:"budget" validate:"omitempty,min=1,max=10000"`
	Scenarios int `json:"scenarios" validate:"omitempty,min=1,max=500"`
}

// TrainJobResponse is returned after enqueueing a training run.
type TrainJobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TrainStatusResponse exposes run progress metadata.
type TrainStatusResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	Budget       int     `json:"budget"`
	Scenarios    int     `json:"scenarios"`
	Episodes     int     `json:"episodes"`
	BestReward   float64 `json:"bestReward"`
	ArtifactPath *string `json:"artifactPath,omitempty"`
	Error        *string `json:"error,omitempty"`
}
