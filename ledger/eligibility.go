package ledger

import "github.com/SiriusLupin/deive-borrow/catalog"

// CheckEligibility 檢查設備可否用於所選用途。
// 專用設備只能用於其專用用途；未限定用途的設備任何用途皆可。
// deviceID 需已轉為大寫。
func CheckEligibility(deviceID, purpose string) error {
	dedicated, ok := catalog.DedicatedPurpose(deviceID)
	if !ok {
		return nil
	}
	if purpose != dedicated {
		return &EligibilityError{DeviceID: deviceID, Dedicated: dedicated, Purpose: purpose}
	}
	return nil
}
