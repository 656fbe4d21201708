package dom

// Property is an element property that guests may read or write by name.
// Only the properties listed here are reachable; any other key is rejected.
type Property uint8

const (
	PropValue Property = iota + 1
	PropMin
	PropMax
	PropStep
	PropChecked
	PropDisabled
	PropHidden
	PropTextContent
	PropInnerText
	PropInnerHTML
	PropClassName
	PropTitle
	PropPlaceholder
	PropType
	PropName
	PropSrc
	PropHref
	PropTabIndex
	PropScrollTop
	PropScrollLeft
	PropScrollWidth
	PropScrollHeight
	PropClientWidth
	PropClientHeight
	PropWidth
	PropHeight
)

var propertyNames = [...]string{
	PropValue:        "value",
	PropMin:          "min",
	PropMax:          "max",
	PropStep:         "step",
	PropChecked:      "checked",
	PropDisabled:     "disabled",
	PropHidden:       "hidden",
	PropTextContent:  "textContent",
	PropInnerText:    "innerText",
	PropInnerHTML:    "innerHTML",
	PropClassName:    "className",
	PropTitle:        "title",
	PropPlaceholder:  "placeholder",
	PropType:         "type",
	PropName:         "name",
	PropSrc:          "src",
	PropHref:         "href",
	PropTabIndex:     "tabIndex",
	PropScrollTop:    "scrollTop",
	PropScrollLeft:   "scrollLeft",
	PropScrollWidth:  "scrollWidth",
	PropScrollHeight: "scrollHeight",
	PropClientWidth:  "clientWidth",
	PropClientHeight: "clientHeight",
	PropWidth:        "width",
	PropHeight:       "height",
}

var propertyByName = func() map[string]Property {
	m := make(map[string]Property, len(propertyNames))
	for p, name := range propertyNames {
		if name != "" {
			m[name] = Property(p)
		}
	}
	return m
}()

// LookupProperty resolves a property name.
func LookupProperty(name string) (Property, bool) {
	p, ok := propertyByName[name]
	return p, ok
}

// Properties returns the supported property names in declaration order.
func Properties() []string {
	names := make([]string, 0, len(propertyNames)-1)
	for _, name := range propertyNames[1:] {
		names = append(names, name)
	}
	return names
}

func (p Property) String() string {
	if int(p) < len(propertyNames) && propertyNames[p] != "" {
		return propertyNames[p]
	}
	return "unknown"
}
