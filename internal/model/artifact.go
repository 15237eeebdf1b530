package model

// ArtifactKind distinguishes division workbooks from change-order memos.
type ArtifactKind string

const (
	ArtifactWorkbook ArtifactKind = "WORKBOOK"
	ArtifactMemo     ArtifactKind = "MEMO"
)

// Artifact is a file produced by a run and queued for distribution.
type Artifact struct {
	Kind       ArtifactKind
	Path       string
	Division   string
	ContractID string // set for memos only
}
