package dto

// Health probe status values.
const (
	HealthOK       = "ok"
	HealthReady    = "ready"
	HealthNotReady = "not_ready"
)

type LivenessResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse lists each dependency check by name. A passing check
// reads "ok"; a failing one carries its error text.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func ToReadinessResponse(results map[string]error) ReadinessResponse {
	resp := ReadinessResponse{Status: HealthReady, Checks: make(map[string]string, len(results))}
	for name, err := range results {
		if err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = HealthNotReady
			continue
		}
		resp.Checks[name] = HealthOK
	}
	return resp
}
