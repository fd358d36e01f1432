package engine

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     Vars
		want     string
	}{
		{
			name:     "all fields present",
			template: "Olá {{name}}, ainda temos vagas em {{course}}!",
			vars:     Vars{Name: "Maria", Course: "Engenharia"},
			want:     "Olá Maria, ainda temos vagas em Engenharia!",
		},
		{
			name:     "missing name falls back",
			template: "Olá {{name}}, tudo bem?",
			vars:     Vars{},
			want:     "Olá Cliente, tudo bem?",
		},
		{
			name:     "missing course falls back",
			template: "Conheça {{course}}.",
			vars:     Vars{Name: "João"},
			want:     "Conheça nossos cursos.",
		},
		{
			name:     "organization and campaign name",
			template: "{{organization}} convida: {{campaign_name}}",
			vars:     Vars{Organization: "EduConnect", CampaignName: "Volta às Aulas"},
			want:     "EduConnect convida: Volta às Aulas",
		},
		{
			name:     "unknown placeholder stays literal",
			template: "Olá {{name}}, código {{promo_code}}",
			vars:     Vars{Name: "Ana"},
			want:     "Olá Ana, código {{promo_code}}",
		},
		{
			name:     "repeated placeholder",
			template: "{{name}}, sim, {{name}}!",
			vars:     Vars{Name: "Bia"},
			want:     "Bia, sim, Bia!",
		},
		{
			name:     "no placeholders",
			template: "Mensagem sem personalização",
			vars:     Vars{Name: "Carlos"},
			want:     "Mensagem sem personalização",
		},
		{
			name:     "empty template",
			template: "",
			vars:     Vars{Name: "Dudu"},
			want:     "",
		},
		{
			name:     "single braces are not placeholders",
			template: "Olá {name}",
			vars:     Vars{Name: "Eva"},
			want:     "Olá {name}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, tt.vars); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}
