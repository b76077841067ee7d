package tagproc

// BuiltinRegistry returns a registry with the built-in tag processors wired
// to the given renderer. Pass order matters: cat runs first so included
// content may carry anchor and link tags.
func BuiltinRegistry(r Renderer) *Registry {
	reg := NewRegistry()
	reg.Use("cat", &CatProcessor{})
	reg.Use("shell", &ShellProcessor{})
	reg.Use("anchor", &AnchorProcessor{Renderer: r})
	reg.Use("link", &LinkProcessor{Renderer: r})
	return reg
}
