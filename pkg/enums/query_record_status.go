package enums

// QueryRecordStatus marks the lifecycle of a materialized query record.
// "Procesado" is the legacy value expected by downstream reporting.
type QueryRecordStatus string

const (
	QueryRecordStatusProcessed QueryRecordStatus = "Procesado"
)

// String implements fmt.Stringer.
func (s QueryRecordStatus) String() string {
	return string(s)
}
