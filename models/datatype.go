package models

import "fmt"

// DataType is the logical type of an attribute.
type DataType string

const (
	DataTypeString     DataType = "String"
	DataTypeText       DataType = "Text"
	DataTypeInteger    DataType = "Integer"
	DataTypeBigInteger DataType = "BigInteger"
	DataTypeFloat      DataType = "Float"
	DataTypeDecimal    DataType = "Decimal"
	DataTypeBoolean    DataType = "Boolean"
	DataTypeDate       DataType = "Date"
	DataTypeDateTime   DataType = "DateTime"
	DataTypeTime       DataType = "Time"
	DataTypeUUID       DataType = "UUID"
	DataTypeJSON       DataType = "JSON"
)

var dataTypes = []DataType{
	DataTypeString, DataTypeText, DataTypeInteger, DataTypeBigInteger,
	DataTypeFloat, DataTypeDecimal, DataTypeBoolean, DataTypeDate,
	DataTypeDateTime, DataTypeTime, DataTypeUUID, DataTypeJSON,
}

// DataTypes returns the accepted attribute data types in display order.
func DataTypes() []DataType {
	out := make([]DataType, len(dataTypes))
	copy(out, dataTypes)
	return out
}

// Valid reports whether d is one of the accepted data types.
func (d DataType) Valid() bool {
	for _, v := range dataTypes {
		if v == d {
			return true
		}
	}
	return false
}

// ParseDataType matches s exactly against the accepted data types.
func ParseDataType(s string) (DataType, error) {
	d := DataType(s)
	if !d.Valid() {
		return "", fmt.Errorf("invalid data type %q, must be one of: %s", s, joinValues(dataTypes))
	}
	return d, nil
}
