// Package lang implements a small text templating language with template
// inheritance.
//
// # Syntax
//
//	{{ user.name }}                          variable interpolation
//	{% block content %}...{% endblock %}     overridable named block
//	{% for item in items %}...{% endfor %}   loop over a list
//	{% include "partials/nav.html" %}        render another template here
//	{% extends "base.html" %}                inherit from another template
//	{{ parent() }}                           content of the overridden block
//
// Everything else is literal text. Tags the parser does not recognize are
// consumed and render nothing.
//
// # Inheritance
//
// A template whose first construct is an extends tag contributes only its
// top-level named blocks. [Resolve] follows extends tags until it reaches a
// template that does not extend anything, then replaces each named block of
// that root with the most derived override. Overrides form a chain through
// [Block.Parent], and a parent marker in one link renders the next:
//
//	base.html:   <title>{% block title %}Site{% endblock %}</title>
//	page.html:   {% extends "base.html" %}
//	             {% block title %}Page | {{ parent() }}{% endblock %}
//
// renders "<title>Page | Site</title>".
//
// # Rendering
//
// Rendering walks a resolved [Module] with an [Environment], a stack of
// scopes over a root context. Each block pushes a scope for its duration;
// loops bind their item in that scope. Variable paths are dotted field
// selections resolved innermost scope first.
//
// An [Engine] ties the pieces together for the common case:
//
//	eng := lang.NewEngine(lang.NewDirLoader(nil, "templates"))
//	out, err := eng.Render(ctx, "page.html", map[string]any{"user": u})
package lang
