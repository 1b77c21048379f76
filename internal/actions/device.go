// Package actions implements the logical-action store from §4.H: a
// persistent (device-type, action-tag) → ir-code mapping, learned
// through §4.E's Learner and transmitted through §4.F, backed by a
// kvstore.Store rather than a package-level table.
package actions

// DeviceType is one member of the closed device-type set.
type DeviceType int

const (
	TV DeviceType = iota
	AC
	STB
	Speaker
	Fan
	Custom
)

// String names the device type for logs and display names.
func (d DeviceType) String() string {
	switch d {
	case TV:
		return "TV"
	case AC:
		return "AC"
	case STB:
		return "STB"
	case Speaker:
		return "Speaker"
	case Fan:
		return "Fan"
	case Custom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Prefix returns the key-derivation prefix from §4.H/§6: "persists
// under a key derived from the device prefix (tv, ac, stb, spk, fan,
// cst)".
func (d DeviceType) Prefix() string {
	switch d {
	case TV:
		return "tv"
	case AC:
		return "ac"
	case STB:
		return "stb"
	case Speaker:
		return "spk"
	case Fan:
		return "fan"
	case Custom:
		return "cst"
	default:
		return "unk"
	}
}

// ActionTag is one member of the closed ~100-tag action-tag set (§4.C
// "logical-action"). Its integer value is the action ordinal used in
// key derivation, shared across device types: a given device only
// recognises the subset DeviceCatalogue lists for it.
type ActionTag int

const (
	ActionPower ActionTag = iota
	ActionMenu
	ActionOK
	ActionBack
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionHome
	ActionExit
	ActionInfo

	ActionVolUp
	ActionVolDown
	ActionMute
	ActionChUp
	ActionChDown
	ActionInput
	ActionGuide
	ActionRecord
	ActionPlayPause
	ActionStop
	ActionFastForward
	ActionRewind
	ActionLastChannel
	ActionFavorite
	ActionChannelList
	ActionSubtitle
	ActionAspectRatio
	ActionSource
	ActionTeletext
	ActionEPG
	ActionPIP
	ActionZoom
	ActionSleep
	ActionSettings
	ActionLanguage
	ActionReturn

	ActionNum0
	ActionNum1
	ActionNum2
	ActionNum3
	ActionNum4
	ActionNum5
	ActionNum6
	ActionNum7
	ActionNum8
	ActionNum9

	ActionRed
	ActionGreen
	ActionYellow
	ActionBlue

	ActionAppNetflix
	ActionAppYouTube
	ActionAppPrimeVideo
	ActionAppDisney

	ActionBassUp
	ActionBassDown
	ActionTrebleUp
	ActionTrebleDown
	ActionSoundMode
	ActionPair
	ActionSourceToggle

	ActionFanSpeed1
	ActionFanSpeed2
	ActionFanSpeed3
	ActionFanSpeed4
	ActionFanSpeed5
	ActionFanSwing
	ActionFanTimer
	ActionFanSleep
	ActionFanIon

	ActionACTempUp
	ActionACTempDown
	ActionACModeToggle
	ActionACFanToggle
	ActionACSwingToggle
	ActionACEco
	ActionACTurbo
	ActionACDisplay

	ActionCustom1
	ActionCustom2
	ActionCustom3
	ActionCustom4
	ActionCustom5
	ActionCustom6
	ActionCustom7
	ActionCustom8
	ActionCustom9
	ActionCustom10
	ActionCustom11
	ActionCustom12
)

var actionNames = map[ActionTag]string{
	ActionPower: "Power", ActionMenu: "Menu", ActionOK: "OK", ActionBack: "Back",
	ActionUp: "Up", ActionDown: "Down", ActionLeft: "Left", ActionRight: "Right",
	ActionHome: "Home", ActionExit: "Exit", ActionInfo: "Info",

	ActionVolUp: "Vol+", ActionVolDown: "Vol-", ActionMute: "Mute",
	ActionChUp: "Ch+", ActionChDown: "Ch-", ActionInput: "Input",
	ActionGuide: "Guide", ActionRecord: "Record", ActionPlayPause: "Play/Pause",
	ActionStop: "Stop", ActionFastForward: "FastForward", ActionRewind: "Rewind",
	ActionLastChannel: "LastChannel", ActionFavorite: "Favorite",
	ActionChannelList: "ChannelList", ActionSubtitle: "Subtitle",
	ActionAspectRatio: "AspectRatio", ActionSource: "Source",
	ActionTeletext: "Teletext", ActionEPG: "EPG", ActionPIP: "PIP",
	ActionZoom: "Zoom", ActionSleep: "Sleep", ActionSettings: "Settings",
	ActionLanguage: "Language", ActionReturn: "Return",

	ActionNum0: "Num0", ActionNum1: "Num1", ActionNum2: "Num2", ActionNum3: "Num3",
	ActionNum4: "Num4", ActionNum5: "Num5", ActionNum6: "Num6", ActionNum7: "Num7",
	ActionNum8: "Num8", ActionNum9: "Num9",

	ActionRed: "Red", ActionGreen: "Green", ActionYellow: "Yellow", ActionBlue: "Blue",

	ActionAppNetflix: "AppNetflix", ActionAppYouTube: "AppYouTube",
	ActionAppPrimeVideo: "AppPrimeVideo", ActionAppDisney: "AppDisney",

	ActionBassUp: "BassUp", ActionBassDown: "BassDown",
	ActionTrebleUp: "TrebleUp", ActionTrebleDown: "TrebleDown",
	ActionSoundMode: "SoundMode", ActionPair: "Pair", ActionSourceToggle: "SourceToggle",

	ActionFanSpeed1: "FanSpeed1", ActionFanSpeed2: "FanSpeed2", ActionFanSpeed3: "FanSpeed3",
	ActionFanSpeed4: "FanSpeed4", ActionFanSpeed5: "FanSpeed5", ActionFanSwing: "FanSwing",
	ActionFanTimer: "FanTimer", ActionFanSleep: "FanSleep", ActionFanIon: "FanIon",

	ActionACTempUp: "TempUp", ActionACTempDown: "TempDown",
	ActionACModeToggle: "ModeToggle", ActionACFanToggle: "FanToggle",
	ActionACSwingToggle: "SwingToggle", ActionACEco: "Eco",
	ActionACTurbo: "Turbo", ActionACDisplay: "Display",

	ActionCustom1: "Custom1", ActionCustom2: "Custom2", ActionCustom3: "Custom3",
	ActionCustom4: "Custom4", ActionCustom5: "Custom5", ActionCustom6: "Custom6",
	ActionCustom7: "Custom7", ActionCustom8: "Custom8", ActionCustom9: "Custom9",
	ActionCustom10: "Custom10", ActionCustom11: "Custom11", ActionCustom12: "Custom12",
}

// Name returns the display name for a, or "Unknown" if a is outside
// the closed set.
func (a ActionTag) Name() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "Unknown"
}

var customTags = []ActionTag{
	ActionCustom1, ActionCustom2, ActionCustom3, ActionCustom4,
	ActionCustom5, ActionCustom6, ActionCustom7, ActionCustom8,
	ActionCustom9, ActionCustom10, ActionCustom11, ActionCustom12,
}

// DeviceCatalogue lists the action tags §4.C says are "enumerated per
// device": the set recognised for each device type, used to validate
// learn/save and to enumerate keys for clear_device.
var DeviceCatalogue = map[DeviceType][]ActionTag{
	TV: append([]ActionTag{
		ActionPower, ActionMenu, ActionOK, ActionBack, ActionUp, ActionDown,
		ActionLeft, ActionRight, ActionHome, ActionExit, ActionInfo,
		ActionVolUp, ActionVolDown, ActionMute, ActionChUp, ActionChDown,
		ActionInput, ActionGuide, ActionLastChannel, ActionFavorite,
		ActionChannelList, ActionSubtitle, ActionAspectRatio, ActionSource,
		ActionTeletext, ActionEPG, ActionSleep, ActionSettings, ActionLanguage,
		ActionReturn, ActionNum0, ActionNum1, ActionNum2, ActionNum3, ActionNum4,
		ActionNum5, ActionNum6, ActionNum7, ActionNum8, ActionNum9,
		ActionRed, ActionGreen, ActionYellow, ActionBlue,
		ActionAppNetflix, ActionAppYouTube, ActionAppPrimeVideo, ActionAppDisney,
	}, customTags...),
	STB: append([]ActionTag{
		ActionPower, ActionMenu, ActionOK, ActionBack, ActionUp, ActionDown,
		ActionLeft, ActionRight, ActionHome, ActionExit, ActionInfo,
		ActionVolUp, ActionVolDown, ActionMute, ActionChUp, ActionChDown,
		ActionInput, ActionGuide, ActionRecord, ActionPlayPause, ActionStop,
		ActionFastForward, ActionRewind, ActionLastChannel, ActionFavorite,
		ActionChannelList, ActionSubtitle, ActionEPG, ActionPIP, ActionZoom,
		ActionNum0, ActionNum1, ActionNum2, ActionNum3, ActionNum4, ActionNum5,
		ActionNum6, ActionNum7, ActionNum8, ActionNum9,
		ActionRed, ActionGreen, ActionYellow, ActionBlue,
	}, customTags...),
	Speaker: append([]ActionTag{
		ActionPower, ActionVolUp, ActionVolDown, ActionMute, ActionInput,
		ActionBassUp, ActionBassDown, ActionTrebleUp, ActionTrebleDown,
		ActionSoundMode, ActionPair, ActionSourceToggle, ActionPlayPause,
	}, customTags...),
	Fan: append([]ActionTag{
		ActionPower, ActionFanSpeed1, ActionFanSpeed2, ActionFanSpeed3,
		ActionFanSpeed4, ActionFanSpeed5, ActionFanSwing, ActionFanTimer,
		ActionFanSleep, ActionFanIon,
	}, customTags...),
	AC: append([]ActionTag{
		ActionPower, ActionACTempUp, ActionACTempDown, ActionACModeToggle,
		ActionACFanToggle, ActionACSwingToggle, ActionACEco, ActionACTurbo,
		ActionACDisplay,
	}, customTags...),
	Custom: customTags,
}

// ValidForDevice reports whether tag is in d's catalogue.
func ValidForDevice(d DeviceType, tag ActionTag) bool {
	for _, t := range DeviceCatalogue[d] {
		if t == tag {
			return true
		}
	}
	return false
}

// DisplayName is the "small helper" §4.H calls for: a device+action
// label for logs.
func DisplayName(d DeviceType, tag ActionTag) string {
	return d.String() + " " + tag.Name()
}

var prefixToDevice = map[string]DeviceType{
	TV.Prefix(): TV, AC.Prefix(): AC, STB.Prefix(): STB,
	Speaker.Prefix(): Speaker, Fan.Prefix(): Fan, Custom.Prefix(): Custom,
}

var nameToAction = func() map[string]ActionTag {
	m := make(map[string]ActionTag, len(actionNames))
	for tag, name := range actionNames {
		m[name] = tag
	}
	return m
}()

// DeviceFromPrefix reverses DeviceType.Prefix, for callers (§4.J's
// orchestrator) that only have the prefix string the learner carries
// on its opaque Target.
func DeviceFromPrefix(prefix string) (DeviceType, bool) {
	d, ok := prefixToDevice[prefix]
	return d, ok
}

// ActionFromName reverses ActionTag.Name.
func ActionFromName(name string) (ActionTag, bool) {
	t, ok := nameToAction[name]
	return t, ok
}
