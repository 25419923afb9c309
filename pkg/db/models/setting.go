package models

// Setting is a process-wide key/value pair loaded at startup and written
// through on change.
type Setting struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value"`
}
