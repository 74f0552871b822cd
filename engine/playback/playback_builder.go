package playback

// ControllerBuilderOption is a functional option for configuring a Controller via NewController.
type ControllerBuilderOption func(*controller)

// WithLooping is an option builder that sets whether the clip wraps.
//
// Parameters:
//   - loop: the looping flag
//
// Returns:
//   - ControllerBuilderOption: a function that applies the looping option to a controller
func WithLooping(loop bool) ControllerBuilderOption {
	return func(c *controller) {
		c.looping = loop
	}
}

// WithPlaying is an option builder that sets whether playback starts enabled.
//
// Parameters:
//   - play: the initial play flag
//
// Returns:
//   - ControllerBuilderOption: a function that applies the playing option to a controller
func WithPlaying(play bool) ControllerBuilderOption {
	return func(c *controller) {
		c.shouldPlay = play
	}
}

// WithSmoothTransitions is an option builder that enables solver auto-blending from the start.
//
// Parameters:
//   - smooth: whether blending is enabled
//
// Returns:
//   - ControllerBuilderOption: a function that applies the smooth transitions option
func WithSmoothTransitions(smooth bool) ControllerBuilderOption {
	return func(c *controller) {
		c.smoothTransitions = smooth
	}
}
