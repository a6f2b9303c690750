// Package catalog 設備與用途的靜態設定：設備種類、各種類可選用途與
// 建議說明、專用設備對照表。
package catalog

import "strings"

// 一般用途：未限定用途的設備皆可借
const GeneralPurpose = "一般用途"

// 其他：需另填具體用途說明
const OtherPurpose = "其他"

// DeviceTypes 可借用的設備種類，順序即選單順序
var DeviceTypes = []string{
	"筆電", "iPAD", "視訊會議喇叭", "網美燈", "相機",
	"攝影機", "單槍投影機", "視訊鏡頭", "耳麥",
}

// dedicated 專用設備對照：設備編號 → 唯一允許的用途
var dedicated = map[string]string{
	"NB04": "院內網路連線",
	"NB07": "院內網路連線",
	"NB11": "院內網路連線",
	"NB10": "影像剪輯或照片編輯",
	"NB12": "OBS直播",
}

// PurposeEntry 一個可選用途與其建議說明
type PurposeEntry struct {
	Name string `json:"name"`
	Tip  string `json:"tip,omitempty"`
}

// purposeMenu 各設備種類的用途選單；未列出的種類用 defaultMenu
var purposeMenu = map[string][]PurposeEntry{
	"筆電": {
		{GeneralPurpose, "NB04、NB07、NB10、NB11 等皆可用"},
		{"院內網路連線", "建議使用 NB04、NB07、NB11"},
		{"影像剪輯或照片編輯", "建議使用 NB10（已安裝影像處理軟體）"},
		{"OBS直播", "限用 NB12（OBS 專用設備）"},
		{OtherPurpose, "請於說明欄輸入具體用途"},
	},
	"iPAD": {
		{"會議用(含視訊會議)", "會議文件無紙化或視訊會議與會"},
		{"評鑑用", "請確認可連院內wifi:WPA2"},
		{OtherPurpose, "請於說明欄輸入具體用途"},
	},
}

var defaultMenu = []PurposeEntry{
	{GeneralPurpose, ""},
	{OtherPurpose, "請於說明欄輸入具體用途"},
}

// CanonicalDeviceID 設備編號一律去空白並轉大寫後比對與儲存
func CanonicalDeviceID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// DedicatedPurpose 回傳設備的專用用途；一般用途設備回傳 ok=false
func DedicatedPurpose(deviceID string) (string, bool) {
	p, ok := dedicated[CanonicalDeviceID(deviceID)]
	return p, ok
}

// KnownDeviceType 是否為可借用的設備種類
func KnownDeviceType(deviceType string) bool {
	for _, t := range DeviceTypes {
		if t == deviceType {
			return true
		}
	}
	return false
}

// PurposesFor 回傳某設備種類可選的用途選單
func PurposesFor(deviceType string) []PurposeEntry {
	if m, ok := purposeMenu[deviceType]; ok {
		return m
	}
	return defaultMenu
}

// KnownPurpose 用途是否在該設備種類的選單內
func KnownPurpose(deviceType, purpose string) bool {
	for _, e := range PurposesFor(deviceType) {
		if e.Name == purpose {
			return true
		}
	}
	return false
}

// Guidance 回傳某種類某用途的建議說明，沒有則回傳空字串
func Guidance(deviceType, purpose string) string {
	for _, e := range PurposesFor(deviceType) {
		if e.Name == purpose {
			return e.Tip
		}
	}
	return ""
}
