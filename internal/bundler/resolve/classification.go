package resolve

// Classification is the outcome of classifying an import name.
type Classification string

const (
	FirstParty     Classification = "first_party"
	ThirdParty     Classification = "third_party"
	StandardLibrary Classification = "standard_library"
)
