package utils

// OctasPerUnit is the fixed-point scaling factor of the chain's native coin
// (1 MOVE = 100,000,000 octas). Scaling happens only at the API boundary,
// never inside the transaction builder.
const OctasPerUnit = 100_000_000

// UnitsToOctas converts whole display units to base units (octas).
func UnitsToOctas(units uint64) uint64 {
	return units * OctasPerUnit
}

// OctasToUnits converts base units (octas) to display units.
func OctasToUnits(octas uint64) float64 {
	return float64(octas) / float64(OctasPerUnit)
}
