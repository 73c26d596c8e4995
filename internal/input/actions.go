package input

// Names bound in the action manifest.
const (
	ActionSetName = "/actions/ovr"

	SourceLeftHand  = "/user/hand/left"
	SourceRightHand = "/user/hand/right"

	ActionPose = "/actions/ovr/in/Pose"

	ActionTouchButtonAX           = "/actions/ovr/in/Button_AX"
	ActionTouchButtonBY           = "/actions/ovr/in/Button_BY"
	ActionTouchButtonThumb        = "/actions/ovr/in/Button_Thumb"
	ActionTouchButtonEnter        = "/actions/ovr/in/Button_Enter"
	ActionTouchButtonIndexTrigger = "/actions/ovr/in/Button_IndexTrigger"
	ActionTouchButtonHandTrigger  = "/actions/ovr/in/Button_HandTrigger"
	ActionTouchTouchAX            = "/actions/ovr/in/Touch_AX"
	ActionTouchTouchBY            = "/actions/ovr/in/Touch_BY"
	ActionTouchTouchThumb         = "/actions/ovr/in/Touch_Thumb"
	ActionTouchTouchThumbRest     = "/actions/ovr/in/Touch_ThumbRest"
	ActionTouchTouchIndexTrigger  = "/actions/ovr/in/Touch_IndexTrigger"
	ActionTouchIndexTrigger       = "/actions/ovr/in/IndexTrigger"
	ActionTouchHandTrigger        = "/actions/ovr/in/HandTrigger"
	ActionTouchThumbstick         = "/actions/ovr/in/Thumbstick"
	ActionTouchRecenterThumb      = "/actions/ovr/in/Recenter_Thumb"
	ActionTouchVibration          = "/actions/ovr/out/Vibration"

	ActionRemoteUp      = "/actions/ovr/in/Remote_Up"
	ActionRemoteDown    = "/actions/ovr/in/Remote_Down"
	ActionRemoteLeft    = "/actions/ovr/in/Remote_Left"
	ActionRemoteRight   = "/actions/ovr/in/Remote_Right"
	ActionRemoteEnter   = "/actions/ovr/in/Remote_Enter"
	ActionRemoteBack    = "/actions/ovr/in/Remote_Back"
	ActionRemoteVolUp   = "/actions/ovr/in/Remote_VolUp"
	ActionRemoteVolDown = "/actions/ovr/in/Remote_VolDown"

	ActionXBoxA             = "/actions/ovr/in/XBox_A"
	ActionXBoxB             = "/actions/ovr/in/XBox_B"
	ActionXBoxRThumb        = "/actions/ovr/in/XBox_RThumb"
	ActionXBoxRShoulder     = "/actions/ovr/in/XBox_RShoulder"
	ActionXBoxX             = "/actions/ovr/in/XBox_X"
	ActionXBoxY             = "/actions/ovr/in/XBox_Y"
	ActionXBoxLThumb        = "/actions/ovr/in/XBox_LThumb"
	ActionXBoxLShoulder     = "/actions/ovr/in/XBox_LShoulder"
	ActionXBoxUp            = "/actions/ovr/in/XBox_Up"
	ActionXBoxDown          = "/actions/ovr/in/XBox_Down"
	ActionXBoxLeft          = "/actions/ovr/in/XBox_Left"
	ActionXBoxRight         = "/actions/ovr/in/XBox_Right"
	ActionXBoxEnter         = "/actions/ovr/in/XBox_Enter"
	ActionXBoxBack          = "/actions/ovr/in/XBox_Back"
	ActionXBoxRIndexTrigger = "/actions/ovr/in/XBox_RIndexTrigger"
	ActionXBoxLIndexTrigger = "/actions/ovr/in/XBox_LIndexTrigger"
	ActionXBoxRThumbstick   = "/actions/ovr/in/XBox_RThumbstick"
	ActionXBoxLThumbstick   = "/actions/ovr/in/XBox_LThumbstick"
	ActionXBoxVibration     = "/actions/ovr/out/XBox_Vibration"
)
