package scene

// Pointer intent resolution. Each click resolves to at most one intent via a
// strict priority order, short-circuiting on the first hit. Agent and device
// checks come before generic panel hits because their affordances can sit
// inside panel geometry in some modes.

type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentHelpConfirm
	IntentHelpDismiss
	IntentAgentHelp
	IntentDeviceToggle
	IntentDeviceClose
	IntentDeviceLink
	IntentPanelBack
	IntentPanelDetails
	IntentPanelFocus
)

type Intent struct {
	Kind  IntentKind
	Panel int
}

func resolveIntent(coord *Coordinator, agent *Navigator, device *Device, panels []*Panel, ray Ray) Intent {
	hit := func(b AABB) bool {
		_, ok := ray.HitAABB(b)
		return ok
	}

	if coord.Mode() == ModeAgentHelp {
		if coord.HelpPromptVisible() {
			if hit(agent.ConfirmButton()) {
				return Intent{Kind: IntentHelpConfirm}
			}
			if hit(agent.DismissButton()) {
				return Intent{Kind: IntentHelpDismiss}
			}
		}
	} else if hit(agent.Body()) {
		return Intent{Kind: IntentAgentHelp}
	}

	if hit(device.Body()) {
		return Intent{Kind: IntentDeviceToggle}
	}

	if device.OverlayVisible {
		if hit(device.CloseButton()) {
			return Intent{Kind: IntentDeviceClose}
		}
		if hit(device.LinkButton()) {
			return Intent{Kind: IntentDeviceLink}
		}
	}

	if fi := coord.FocusedPanel(); fi >= 0 && hit(panels[fi].BackButton()) {
		return Intent{Kind: IntentPanelBack, Panel: fi}
	}

	for _, p := range panels {
		if p.ContentVisible && hit(p.DetailsButton()) {
			return Intent{Kind: IntentPanelDetails, Panel: p.Index}
		}
	}

	for _, p := range panels {
		if hit(p.Body()) {
			return Intent{Kind: IntentPanelFocus, Panel: p.Index}
		}
	}

	return Intent{Kind: IntentNone}
}
