package valueobjects

type HealthStatus string

const healthStatusOK HealthStatus = "ok"

func NewHealthyStatus() HealthStatus {
	return healthStatusOK
}

func (s HealthStatus) String() string {
	return string(s)
}
