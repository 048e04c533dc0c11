// Package i18n looks up display strings by dotted key, e.g.
// "taskdeskApp.task.title", from YAML bundles embedded in the binary.
//
// A Bundle holds every supported locale. Localizers are cheap views onto
// one locale; an unknown key translates to itself so missing strings are
// visible rather than blank. The same Localizer renders validator errors
// through universal-translator.
package i18n
