package renderer

// MeshUploaderBuilderOption is a functional option applied to an uploader during construction
// via NewMeshUploader.
type MeshUploaderBuilderOption func(*meshUploader)

// WithLabel sets the prefix of the GPU buffer debug labels.
//
// Parameters:
//   - label: the label prefix, usually the asset key
//
// Returns:
//   - MeshUploaderBuilderOption: a function that applies the label option to an uploader
func WithLabel(label string) MeshUploaderBuilderOption {
	return func(u *meshUploader) {
		if label != "" {
			u.label = label
		}
	}
}
